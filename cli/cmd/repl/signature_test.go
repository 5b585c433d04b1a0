package repl

import (
	"testing"

	"github.com/qi-lang/qi/core"
	"github.com/qi-lang/qi/log"
	"github.com/qi-lang/qi/reader"
)

// buildTestEnv builds a root environment with builtins registered and a
// handful of user-defined bindings evaluated into it, for use by completer
// and signature tests and benchmarks.
func buildTestEnv() (*core.Env, error) {
	ev := core.NewEvaluator(log.Logger{})

	forms, err := reader.Parse(`
(defn add [x y] (+ x y))
(defn concat [& parts] parts)
(def greeting "hello")
`)
	if err != nil {
		return nil, err
	}

	for _, form := range forms {
		if _, err := ev.Eval(form, ev.Root); err != nil {
			return nil, err
		}
	}

	return ev.Root, nil
}

// newTestEnv is buildTestEnv for *testing.T callers, failing the test on
// any setup error.
func newTestEnv(t *testing.T) *core.Env {
	t.Helper()

	env, err := buildTestEnv()
	if err != nil {
		t.Fatalf("build test env: %v", err)
	}

	return env
}

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		cursor     int
		wantName   string
		wantIndex  int
		wantInCall bool
	}{
		{
			name:       "no function call",
			input:      "greeting",
			cursor:     8,
			wantName:   "",
			wantIndex:  0,
			wantInCall: false,
		},
		{
			name:       "simple function first arg",
			input:      "(add ",
			cursor:     5,
			wantName:   "add",
			wantIndex:  0,
			wantInCall: true,
		},
		{
			name:       "simple function with first arg",
			input:      "(add 1 ",
			cursor:     7,
			wantName:   "add",
			wantIndex:  1,
			wantInCall: true,
		},
		{
			name:       "nested parens",
			input:      "(add (multiply 2 3) ",
			cursor:     21,
			wantName:   "add",
			wantIndex:  1,
			wantInCall: true,
		},
		{
			name:       "cursor inside nested call",
			input:      "(add (multiply 2 3) 4)",
			cursor:     13,
			wantName:   "multiply",
			wantIndex:  0,
			wantInCall: true,
		},
		{
			name:       "variadic function multiple args",
			input:      "(concat \"a\" \"b\" \"c\" ",
			cursor:     20,
			wantName:   "concat",
			wantIndex:  3,
			wantInCall: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectFunctionCall(tt.input, tt.cursor)

			if got.name != tt.wantName {
				t.Errorf("detectFunctionCall().name = %q, want %q", got.name, tt.wantName)
			}

			if got.argIndex != tt.wantIndex {
				t.Errorf("detectFunctionCall().argIndex = %d, want %d", got.argIndex, tt.wantIndex)
			}

			if got.inCall != tt.wantInCall {
				t.Errorf("detectFunctionCall().inCall = %v, want %v", got.inCall, tt.wantInCall)
			}
		})
	}
}

func TestGetSignature(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name          string
		funcName      string
		wantSignature string
		wantParamLen  int
	}{
		{
			name:          "user-defined function",
			funcName:      "add",
			wantSignature: "add(arg0, arg1)",
			wantParamLen:  2,
		},
		{
			name:          "user-defined variadic function",
			funcName:      "concat",
			wantSignature: "concat(...rest)",
			wantParamLen:  1,
		},
		{
			name:          "plain value binding is not callable",
			funcName:      "greeting",
			wantSignature: "",
			wantParamLen:  0,
		},
		{
			name:          "builtin two-arg",
			funcName:      "cons",
			wantSignature: "cons(arg0, arg1)",
			wantParamLen:  2,
		},
		{
			name:          "builtin variadic",
			funcName:      "swap!",
			wantSignature: "swap!(arg0, arg1, ...args)",
			wantParamLen:  3,
		},
		{
			name:          "nonexistent function",
			funcName:      "doesnotexist",
			wantSignature: "",
			wantParamLen:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSig, gotParams := getSignature(env, tt.funcName)

			if gotSig != tt.wantSignature {
				t.Errorf("getSignature().signature = %q, want %q", gotSig, tt.wantSignature)
			}

			if len(gotParams) != tt.wantParamLen {
				t.Errorf("getSignature().params length = %d, want %d", len(gotParams), tt.wantParamLen)
			}
		})
	}
}

func TestRenderSignatureHint(t *testing.T) {
	tests := []struct {
		name       string
		signature  string
		params     []string
		currentArg int
	}{
		{
			name:       "no params",
			signature:  "greeting()",
			params:     []string{},
			currentArg: 0,
		},
		{
			name:       "first param highlighted",
			signature:  "add(arg0, arg1)",
			params:     []string{"arg0", "arg1"},
			currentArg: 0,
		},
		{
			name:       "second param highlighted",
			signature:  "add(arg0, arg1)",
			params:     []string{"arg0", "arg1"},
			currentArg: 1,
		},
		{
			name:       "variadic param",
			signature:  "concat(...rest)",
			params:     []string{"...rest"},
			currentArg: 0,
		},
		{
			name:       "variadic param multiple args",
			signature:  "concat(...rest)",
			params:     []string{"...rest"},
			currentArg: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderSignatureHint(tt.signature, tt.params, tt.currentArg)

			if got == "" && tt.signature != "" {
				t.Errorf("renderSignatureHint() returned empty string for signature %q", tt.signature)
			}
		})
	}
}
