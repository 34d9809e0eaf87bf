package payment

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCard_Validate_Accepts(t *testing.T) {
	cards := []Card{
		{Number: "4111111111111111", Expiry: "12/99", CVC: "123", Name: "Amina Nakato"},
		{Number: "4111 1111 1111 1111", Expiry: "01/30", CVC: "123", Name: "Amina Nakato"},
		{Number: "3782-822463-10005", Expiry: "06/28", CVC: "1234", Name: "Amina Nakato"},
	}
	for _, c := range cards {
		assert.NoError(t, c.Validate(), c.Number)
	}
}

func TestCard_Validate_NameFromJSON(t *testing.T) {
	var c Card
	require.NoError(t, json.Unmarshal([]byte(`{"number":"4111111111111111","expiry":"12/99","cvc":"123","name":""}`), &c))

	fields := FieldErrors(c.Validate())
	require.Len(t, fields, 1)
	assert.Equal(t, "name", fields[0].Field)

	require.NoError(t, json.Unmarshal([]byte(`{"name":"Amina Nakato"}`), &c))
	assert.NoError(t, c.Validate())
}

func TestCard_Validate_RejectsPerField(t *testing.T) {
	tests := []struct {
		name   string
		card   Card
		fields []string
	}{
		{"month 13", Card{Number: "4111111111111111", Expiry: "13/25", CVC: "123", Name: "Amina Nakato"}, []string{"expiry"}},
		{"month 00", Card{Number: "4111111111111111", Expiry: "00/25", CVC: "123", Name: "Amina Nakato"}, []string{"expiry"}},
		{"long year", Card{Number: "4111111111111111", Expiry: "12/2025", CVC: "123", Name: "Amina Nakato"}, []string{"expiry"}},
		{"short number", Card{Number: "41111111111111", Expiry: "12/25", CVC: "123", Name: "Amina Nakato"}, []string{"number"}},
		{"17 digits", Card{Number: "41111111111111111", Expiry: "12/25", CVC: "123", Name: "Amina Nakato"}, []string{"number"}},
		{"letters", Card{Number: "4111abcd11111111", Expiry: "12/25", CVC: "123", Name: "Amina Nakato"}, []string{"number"}},
		{"short cvc", Card{Number: "4111111111111111", Expiry: "12/25", CVC: "12", Name: "Amina Nakato"}, []string{"cvc"}},
		{"blank name", Card{Number: "4111111111111111", Expiry: "12/25", CVC: "123", Name: "  "}, []string{"name"}},
		{"everything", Card{}, []string{"number", "expiry", "cvc", "name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.card.Validate()
			require.Error(t, err)

			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)

			var fields []string
			for _, fe := range FieldErrors(err) {
				fields = append(fields, fe.Field)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}

func TestDetectCardType(t *testing.T) {
	tests := []struct {
		number string
		want   string
	}{
		{"4111111111111111", "visa"},
		{"5555 5555 5555 4444", "mastercard"},
		{"5655555555554444", ""},
		{"378282246310005", "amex"},
		{"6011111111111117", "discover"},
		{"6500000000000002", "discover"},
		{"411", ""},
		{"9999999999999999", ""},
	}

	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCardType(tt.number))
		})
	}
}

func TestCard_Last4(t *testing.T) {
	assert.Equal(t, "1111", Card{Number: "4111-1111-1111-1111"}.Last4())
	assert.Equal(t, "12", Card{Number: "12"}.Last4())
}
