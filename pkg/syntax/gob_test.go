package syntax

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestGobRoundTripsBodyAcrossInterfaceFields exercises the encode/decode
// path a re-exec'd worker relies on: a List field typed as an interface
// must survive gob through the registered concrete types.
func TestGobRoundTripsBodyAcrossInterfaceFields(t *testing.T) {
	var body List = &SequentialList{
		Right: &Pipeline{
			Commands: []Command{
				&UnsubCommand{
					Program:   &LiteralWord{Value: "echo"},
					Arguments: []Word{&LiteralWord{Value: "hi"}},
					Redirects: []Redirect{
						&FileRedirect{TargetFd: 1, Kind: OpenAppend, Filename: "log"},
					},
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&body); err != nil {
		t.Fatalf("encode: %v", err)
	}

	var decoded List
	if err := gob.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if diff := cmp.Diff(body, decoded, cmp.AllowUnexported(
		base{},
		SequentialList{},
		Pipeline{},
		UnsubCommand{},
		LiteralWord{},
		FileRedirect{},
	)); diff != "" {
		t.Errorf("gob round trip changed the tree (-want +got):\n%s", diff)
	}
}
