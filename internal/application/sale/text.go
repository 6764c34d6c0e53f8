package sale

import "golang.org/x/text/cases"

// foldText normaliza texto para comparación sin distinción de mayúsculas
// (case folding Unicode, no solo ASCII).
func foldText(s string) string {
	return cases.Fold().String(s)
}
