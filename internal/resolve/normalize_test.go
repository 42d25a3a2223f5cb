package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey_Empty(t *testing.T) {
	assert.Equal(t, "", Key(""))
	assert.Equal(t, "", Key("   "))
}

func TestKey_StripPrefix(t *testing.T) {
	assert.Equal(t, "aalst", Key("Gemeente en OCMW Aalst"))
	assert.Equal(t, "sint-niklaas", Key("  Gemeente en OCMW Sint-Niklaas "))
}

func TestKey_PrefixIsCaseSensitive(t *testing.T) {
	assert.Equal(t, "gemeente en ocmw aalst", Key("gemeente en OCMW Aalst"))
}

func TestKey_Lowercase(t *testing.T) {
	assert.Equal(t, "herk-de-stad", Key("Herk-de-Stad"))
	assert.Equal(t, "pajottegem", Key("PAJOTTEGEM"))
}

func TestKey_Idempotent(t *testing.T) {
	labels := []string{
		"Gemeente en OCMW Aalst",
		"  Gemeente en OCMW  Aalst ",
		"Gemeente en OCMW Gemeente en OCMW Gent",
		"De Pinte",
		"Provincie Antwerpen",
		"Comines-Warneton",
		"",
	}
	for _, l := range labels {
		once := Key(l)
		assert.Equal(t, once, Key(once), "label: %q", l)
	}
}

func TestProvinceNames(t *testing.T) {
	assert.Equal(t, "west-vlaanderen", ProvinceNames.Key("Provincie West-Vlaanderen"))
	assert.Equal(t, "West-Vlaanderen", ProvinceNames.Display("Provincie West-Vlaanderen"))
	assert.Equal(t, "limburg", ProvinceNames.Key("Limburg"))
}
