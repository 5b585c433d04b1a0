package repl

import "testing"

// BenchmarkGetSignature_UserFunction benchmarks the full signature lookup
// path for a user-defined function.
func BenchmarkGetSignature_UserFunction(b *testing.B) {
	env, err := buildTestEnv()
	if err != nil {
		b.Fatalf("build test env: %v", err)
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = getSignature(env, "add")
	}
}

// BenchmarkGetSignature_Builtin benchmarks the full signature lookup path
// for a builtin function.
func BenchmarkGetSignature_Builtin(b *testing.B) {
	env, err := buildTestEnv()
	if err != nil {
		b.Fatalf("build test env: %v", err)
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = getSignature(env, "cons")
	}
}

// BenchmarkDetectFunctionCall benchmarks call-site detection on a nested
// form.
func BenchmarkDetectFunctionCall(b *testing.B) {
	input := "(add (multiply 2 3) 4"
	cursor := len(input)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = detectFunctionCall(input, cursor)
	}
}
