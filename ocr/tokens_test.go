package ocr

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/tsawler/ledger/model"
)

func TestWriteReadTokens(t *testing.T) {
	tokens := []model.Token{
		model.NewToken("María", 10, 20, 60, 35),
		model.NewToken("Idem", 200, 21, 240, 36),
	}

	var buf bytes.Buffer
	if err := WriteTokens(&buf, tokens); err != nil {
		t.Fatalf("WriteTokens() failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"text": "María"`) {
		t.Errorf("output missing text field:\n%s", buf.String())
	}

	got, err := ReadTokens(&buf)
	if err != nil {
		t.Fatalf("ReadTokens() failed: %v", err)
	}
	if !reflect.DeepEqual(got, tokens) {
		t.Errorf("ReadTokens() = %v, want %v", got, tokens)
	}
}

func TestReadTokens_Invalid(t *testing.T) {
	if _, err := ReadTokens(strings.NewReader("{")); err == nil {
		t.Error("ReadTokens() should fail on malformed JSON")
	}
}

func TestReadTokens_CornerArrays(t *testing.T) {
	in := `[{"text": "a", "box": [[1,2],[3,2],[3,4],[1,4]]}]`
	tokens, err := ReadTokens(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadTokens() failed: %v", err)
	}
	if tokens[0].Left() != 1 || tokens[0].Right() != 3 || tokens[0].Top() != 2 {
		t.Errorf("token = %+v", tokens[0])
	}
}
