package script

import (
	"errors"
	"testing"

	"github.com/matzehuels/wzrd/pkg/core/ast"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "Arithmetic",
			src:  "(48*(11+20))",
			want: "(begin (send (int 48) :* (begin (send (int 11) :+ (int 20)))))",
		},
		{
			name: "Precedence",
			src:  "1 + 2 * 3",
			want: "(send (int 1) :+ (send (int 2) :* (int 3)))",
		},
		{
			name: "LeftAssociative",
			src:  "a - b - c",
			want: "(send (send (lvar :a) :- (lvar :b)) :- (lvar :c))",
		},
		{
			name: "Def",
			src:  "def main(a) return (48*(11+a)) end",
			want: "(def :main (args (arg :a)) (return (begin (send (int 48) :* (begin (send (int 11) :+ (lvar :a)))))))",
		},
		{
			name: "DefNoParams",
			src:  "def answer\n  42\nend",
			want: "(def :answer (args) (int 42))",
		},
		{
			name: "NegativeLiterals",
			src:  "-5 * -2.5",
			want: "(send (int -5) :* (float -2.5))",
		},
		{
			name: "UnaryMinus",
			src:  "-x",
			want: "(send (lvar :x) :-@)",
		},
		{
			name: "MethodCalls",
			src:  `a.add(1).to_s("x", nil)`,
			want: `(send (send (lvar :a) :add (int 1)) :to_s (str "x") (nil))`,
		},
		{
			name: "ReceiverlessCall",
			src:  "puts(1)",
			want: "(send nil :puts (int 1))",
		},
		{
			name: "If",
			src:  "if c then 1 else 2 end",
			want: "(if (lvar :c) (int 1) (int 2))",
		},
		{
			name: "IfWithoutElse",
			src:  "if c\n  1\nend",
			want: "(if (lvar :c) (int 1) nil)",
		},
		{
			name: "AssignmentUnsupported",
			src:  "# setup\nx = 1",
			want: "",
		},
		{
			name: "MultilineArgs",
			src:  "a.foo(\n  1,\n  2\n)",
			want: "(send (lvar :a) :foo (int 1) (int 2))",
		},
		{
			name: "StringEscapes",
			src:  `"a\"b"`,
			want: `(str "a\"b")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Parse(tt.src)
			if tt.want == "" {
				if err == nil {
					t.Fatalf("Parse(%q) should fail on assignment", tt.src)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.src, err)
			}
			if got := ast.Sexp(n); got != tt.want {
				t.Errorf("Parse(%q)\n got  %s\n want %s", tt.src, got, tt.want)
			}
		})
	}
}

func TestParseSequence(t *testing.T) {
	n, err := Parse("# comment\n1; 2\n\n3 # trailing\n")
	if err != nil {
		t.Fatal(err)
	}
	b, ok := n.(*ast.Begin)
	if !ok || len(b.Body) != 3 {
		t.Fatalf("Parse = %s, want begin with 3 statements", ast.Sexp(n))
	}
}

func TestParseEmpty(t *testing.T) {
	n, err := Parse("  \n# nothing\n")
	if err != nil || n != nil {
		t.Errorf("Parse = %v, %v; want nil, nil", n, err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"UnclosedParen", "(1 + 2", 1},
		{"MissingEnd", "def f(a)\n  a", 2},
		{"StrayParen", "1)", 1},
		{"BadParam", "def f(1) end", 1},
		{"DanglingOperator", "1 +", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("Parse(%q) error = %v, want *Error", tt.src, err)
			}
			if perr.Pos.Line != tt.line {
				t.Errorf("error line = %d, want %d (%v)", perr.Pos.Line, tt.line, perr)
			}
		})
	}
}
