package schema

import (
	"encoding/json"
	"errors"
	"testing"
)

func rawArgs(t *testing.T, s string) map[string]json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		t.Fatalf("bad fixture %s: %v", s, err)
	}
	return m
}

var travel = MustNew(
	Text("destination", "Travel destination city"),
	OptionalText("date", "Planned travel date (optional)"),
)

func TestValidate_TrimsText(t *testing.T) {
	args, err := Validate(travel, rawArgs(t, `{"destination":"  Paris  "}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := args.String("destination"); got != "Paris" {
		t.Fatalf("destination = %q", got)
	}
	if _, ok := args.Lookup("date"); ok {
		t.Fatalf("date should be absent")
	}
}

func TestValidate_BlankOptionalIsAbsent(t *testing.T) {
	for _, in := range []string{`{"destination":"Rome","date":"   "}`, `{"destination":"Rome","date":null}`} {
		args, err := Validate(travel, rawArgs(t, in))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", in, err)
		}
		if _, ok := args.Lookup("date"); ok {
			t.Fatalf("%s: date should be absent", in)
		}
		if args.Len() != 1 {
			t.Fatalf("%s: len = %d", in, args.Len())
		}
	}
}

func TestValidate_Failures(t *testing.T) {
	cases := []struct {
		in     string
		reason string
	}{
		{`{}`, ReasonMissing},
		{`{"destination":null}`, ReasonMissing},
		{`{"destination":""}`, ReasonEmpty},
		{`{"destination":" \t "}`, ReasonEmpty},
		{`{"destination":42}`, ReasonNotText},
		{`{"destination":["Paris"]}`, ReasonNotText},
	}
	for _, tc := range cases {
		_, err := Validate(travel, rawArgs(t, tc.in))
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: expected ValidationError, got %v", tc.in, err)
		}
		if ve.Field != "destination" || ve.Reason != tc.reason {
			t.Fatalf("%s: got %+v", tc.in, ve)
		}
	}
}

func TestValidate_OptionalMustBeString(t *testing.T) {
	_, err := Validate(travel, rawArgs(t, `{"destination":"Rome","date":7}`))
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "date" || ve.Reason != ReasonNotText {
		t.Fatalf("got %v", err)
	}
}

func TestValidate_Enum(t *testing.T) {
	s := MustNew(Enum("unit", "", "F", "C"))

	args, err := Validate(s, rawArgs(t, `{"unit":"C"}`))
	if err != nil || args.String("unit") != "C" {
		t.Fatalf("args=%v err=%v", args, err)
	}

	// Enum values are matched exactly, without trimming.
	_, err = Validate(s, rawArgs(t, `{"unit":" C"}`))
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Reason != "must be one of: F, C" {
		t.Fatalf("got %v", err)
	}
}

func TestValidate_CollectsAllErrorsInOrder(t *testing.T) {
	s := MustNew(Text("a", ""), Text("b", ""), Enum("c", "", "x"))
	_, err := Validate(s, rawArgs(t, `{"c":"y","b":""}`))
	var list ValidationErrors
	if !errors.As(err, &list) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 errors, got %v", list)
	}
	if list[0].Field != "a" || list[1].Field != "b" || list[2].Field != "c" {
		t.Fatalf("wrong order: %v", list)
	}
	if err.Error() != "a: missing; b: empty; c: must be one of: x" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestValidate_IgnoresUnknownAndDoesNotMutate(t *testing.T) {
	in := rawArgs(t, `{"destination":" Oslo ","extra":{"nested":true}}`)
	args, err := Validate(travel, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args.Len() != 1 {
		t.Fatalf("unexpected args: %v", args)
	}
	if string(in["destination"]) != `" Oslo "` {
		t.Fatalf("input mutated: %s", in["destination"])
	}
}

func TestValidate_Idempotent(t *testing.T) {
	in := rawArgs(t, `{"destination":"Lima","date":"2026-01-01"}`)
	a1, err1 := Validate(travel, in)
	a2, err2 := Validate(travel, in)
	if err1 != nil || err2 != nil {
		t.Fatalf("errors: %v %v", err1, err2)
	}
	if a1.String("destination") != a2.String("destination") || a1.String("date") != a2.String("date") {
		t.Fatalf("results differ")
	}
}
