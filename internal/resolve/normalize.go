package resolve

import "strings"

// DefaultPrefix is the literal prefix the exports put in front of every
// merged municipality/OCMW administration.
const DefaultPrefix = "Gemeente en OCMW "

// ProvincePrefix is the prefix used for provincial administrations.
const ProvincePrefix = "Provincie "

// Normalizer turns free-text government labels into comparable keys.
type Normalizer struct {
	Prefix string
}

// Default normalizes municipality labels.
var Default = Normalizer{Prefix: DefaultPrefix}

// ProvinceNames normalizes provincial administration labels.
var ProvinceNames = Normalizer{Prefix: ProvincePrefix}

// Key normalizes a label by:
//  1. Trimming whitespace
//  2. Stripping the prefix (case-sensitive, checked before case folding)
//  3. Lower-casing the remainder
//
// The result is trimmed once more so Key is idempotent.
func (n Normalizer) Key(label string) string {
	label = strings.TrimSpace(label)
	if n.Prefix != "" && strings.HasPrefix(label, n.Prefix) {
		label = strings.TrimSpace(strings.TrimPrefix(label, n.Prefix))
	}
	return strings.ToLower(label)
}

// Display strips the prefix but keeps the original casing.
func (n Normalizer) Display(label string) string {
	label = strings.TrimSpace(label)
	if n.Prefix != "" && strings.HasPrefix(label, n.Prefix) {
		label = strings.TrimSpace(strings.TrimPrefix(label, n.Prefix))
	}
	return label
}

// Key normalizes a municipality label with the default prefix.
func Key(label string) string {
	return Default.Key(label)
}
