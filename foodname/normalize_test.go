package foodname

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		fallback string
		want     string
		ok       bool
	}{
		{name: "fraction prefix", label: "1/2 onion", want: "Onion", ok: true},
		{name: "bare weight", label: "250g beef mince", want: "Beef mince", ok: true},
		{name: "meat keeps count and weight", label: "2 x 110g chicken breast fillets", want: "2 x 110g Chicken breast fillets", ok: true},
		{name: "fish keeps bare weight", label: "2 x 110g basa fillets", want: "110g Basa fillets", ok: true},
		{name: "fish with bare weight", label: "240g salmon fillets", want: "240g Salmon fillets", ok: true},
		{name: "non protein drops count and weight", label: "2 x 20g parmesan", want: "Parmesan", ok: true},
		{name: "tin with size prefix", label: "(200g) tin chopped tomatoes", want: "Chopped tomatoes (200g)", ok: true},
		{name: "tin size in brackets", label: "Chopped tomatoes (400g tin)", want: "Chopped tomatoes (400g)", ok: true},
		{name: "descriptive bracket kept", label: "Houmous (ready to eat)", want: "Houmous (ready to eat)", ok: true},
		{name: "quantity bracket removed", label: "Red onion (1)", want: "Red onion", ok: true},
		{name: "packaging bracket removed", label: "Coconut milk (pouch)", want: "Coconut milk", ok: true},
		{name: "trailing packaging noun", label: "Passata carton", want: "Passata", ok: true},
		{name: "trailing multiplier", label: "Chicken stock pot x2", want: "Chicken stock pot", ok: true},
		{name: "multiplier bracket removed", label: "Stock pot (x2)", want: "Stock pot", ok: true},
		{name: "count first multiplier bracket removed", label: "Stock pot (2 x)", want: "Stock pot", ok: true},
		{name: "repeated leading tokens", label: "2 x 1 tin of black beans", want: "Black beans", ok: true},
		{name: "unit and of", label: "1 tsp of ground cumin", want: "Ground cumin", ok: true},
		{name: "unicode fraction", label: "½ lemon", want: "Lemon", ok: true},
		{name: "whitespace collapsed", label: "  spring   onions ", want: "Spring onions", ok: true},
		{name: "fallback when nothing remains", label: "2 x 100g", fallback: "garlic", want: "Garlic", ok: true},
		{name: "absent when fallback empty", label: "250g", fallback: " ", want: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.label, tt.fallback)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, label := range []string{"Onion", "Black beans", "2 x 110g Chicken breast fillets", "Houmous (ready to eat)"} {
		got, ok := Normalize(label, "")
		assert.True(t, ok)
		assert.Equal(t, label, got)
	}
}
