package gen

import (
	"fmt"
	"go/build/constraint"
	"strings"

	"mock-generator/internal/scan"
)

// effectiveConstraint combines the //go:build line of the declaring file with
// the gate. Either may be absent; the result is "" when both are.
func effectiveConstraint(file string, gate *scan.Gate) (string, error) {
	var exprs []constraint.Expr

	if file != "" {
		expr, err := constraint.Parse("//go:build " + file)
		if err != nil {
			return "", fmt.Errorf("parsing file constraint %q: %w", file, err)
		}

		exprs = append(exprs, expr)
	}

	if gate != nil {
		exprs = append(exprs, gate.Expr)
	}

	switch len(exprs) {
	case 0:
		return "", nil
	case 1:
		return exprs[0].String(), nil
	default:
		if exprs[0].String() == exprs[1].String() {
			return exprs[0].String(), nil
		}

		return (&constraint.AndExpr{X: exprs[0], Y: exprs[1]}).String(), nil
	}
}

var slugReplacer = strings.NewReplacer(
	"!", " not ",
	"&&", " and ",
	"||", " or ",
	"(", " ",
	")", " ",
)

// slug turns a constraint into a file name fragment:
// "test && !race" becomes "test_and_not_race".
func slug(expr string) string {
	words := strings.Fields(slugReplacer.Replace(expr))

	s := strings.ToLower(strings.Join(words, "_"))

	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
