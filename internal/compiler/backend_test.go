package compiler

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evaluators() map[string]Evaluator {
	return map[string]Evaluator{
		"cue":  NewCUE(),
		"expr": NewExpr(),
	}
}

func TestEvaluate_BackendsAgree(t *testing.T) {
	tests := []struct {
		cond string
		want bool
	}{
		{"", true},
		{"'Debug' == 'debug'", true},
		{"'Debug' != 'debug'", false},
		{"'' == ''", true},
		{"'Release' == ''", false},
		{"'4.0' >= '3'", true},
		{"'10' < '9'", false},
		{"'0x10' == '16'", true},
		{"'-1' < '0'", true},
		{"'1' == 'one'", false},
		{"'a'=='a' and 'b'=='c'", false},
		{"'a'=='b' or 'c'=='c'", true},
		{"'a'=='b' or 'c'=='c' and 'd'=='d'", true},
		{"('a'=='b' or 'c'=='c') and 'd'=='e'", false},
		{"!('a'=='b')", true},
		{"!!true", true},
		{"on and !off", true},
		{"Exists('obj')", true},
		{"!Exists('bin')", true},
		{"Exists('obj') == false", false},
		{"HasTrailingSlash('out/') and 'x' == 'X'", true},
		{`'a"b' == 'A"B'`, true},
	}
	funcs := existsIn("obj")
	for name, ev := range evaluators() {
		for _, tt := range tests {
			t.Run(name+"/"+tt.cond, func(t *testing.T) {
				got, err := Evaluate(ev, tt.cond, funcs)
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			})
		}
	}
}

func TestEvaluate_TranslateError(t *testing.T) {
	for name, ev := range evaluators() {
		t.Run(name, func(t *testing.T) {
			_, err := Evaluate(ev, "'a' < 'b'", Funcs{})
			require.Error(t, err)
			assert.True(t, IsCompileError(err))
		})
	}
}

func TestEval_NonBoolean(t *testing.T) {
	for name, ev := range evaluators() {
		t.Run(name, func(t *testing.T) {
			_, err := ev.Eval("1.0")
			require.Error(t, err)
			assert.True(t, IsCompileError(err))
		})
	}
}

func TestExpr_CachesPrograms(t *testing.T) {
	ev := NewExpr()
	for range 3 {
		ok, err := ev.Eval(`("a" == "a")`)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Len(t, ev.programs, 1)
}

func TestEvaluators_Concurrent(t *testing.T) {
	for name, ev := range evaluators() {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			errs := make(chan error, 16)
			for range 16 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					ok, err := Evaluate(ev, "'x' == 'X' and '2' > '1'", Funcs{})
					if err == nil && !ok {
						t.Error("expected true")
					}
					if err != nil {
						errs <- err
					}
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				t.Fatal(err)
			}
		})
	}
}
