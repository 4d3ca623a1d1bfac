package shared

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type deckBody struct {
	Name     string `json:"name" validate:"required,max=20"`
	ConfigID int64  `json:"config_id,omitempty" validate:"omitempty,gt=0"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    deckBody
		wantErr error
		errText string
	}{
		{name: "valid", body: `{"name":"Spanish","config_id":2}`, want: deckBody{Name: "Spanish", ConfigID: 2}},
		{name: "unknown fields are ignored", body: `{"name":"Spanish","colour":"red"}`, want: deckBody{Name: "Spanish"}},
		{name: "empty body", body: "", wantErr: ErrEmptyBody},
		{name: "whitespace only", body: "  \n", wantErr: ErrEmptyBody},
		{name: "trailing value", body: `{"name":"a"}{"name":"b"}`, wantErr: ErrTrailingData},
		{name: "syntax error", body: `{"name":"a",}`, errText: "invalid character"},
		{name: "wrong type", body: `{"name":5}`, errText: "cannot unmarshal number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/decks", strings.NewReader(tt.body))

			var got deckBody
			err := DecodeJSON(req, &got)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errText != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errText)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDecodeJSONNoBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Body = http.NoBody

	var got deckBody
	assert.ErrorIs(t, DecodeJSON(req, &got), ErrEmptyBody)
}

func TestDecodeJSONOversizedBody(t *testing.T) {
	body := `{"name":"` + strings.Repeat("x", MaxJSONBodySize) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	var got deckBody
	err := DecodeJSON(req, &got)

	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestDecodeJSONReadError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", failingReader{})

	var got deckBody
	assert.ErrorIs(t, DecodeJSON(req, &got), io.ErrClosedPipe)
}

var errReservedName = errors.New("name is reserved")

type selfChecking struct {
	Name string `json:"name" validate:"required"`
}

func (s *selfChecking) Validate() error {
	if s.Name == "Default" {
		return errReservedName
	}
	return nil
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name     string
		req      interface{}
		wantErr  error
		wantTags []string
	}{
		{name: "valid struct", req: &deckBody{Name: "Spanish"}},
		{name: "missing name", req: &deckBody{}, wantTags: []string{"required"}},
		{name: "several failures", req: &deckBody{Name: strings.Repeat("x", 21), ConfigID: -1}, wantTags: []string{"max", "gt"}},
		{name: "self check passes", req: &selfChecking{Name: "Spanish"}},
		{name: "self check fails", req: &selfChecking{Name: "Default"}, wantErr: errReservedName},
		{name: "tags run before self check", req: &selfChecking{}, wantTags: []string{"required"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.req)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantTags != nil:
				var verrs validator.ValidationErrors
				require.ErrorAs(t, err, &verrs)
				tags := make([]string, 0, len(verrs))
				for _, fe := range verrs {
					tags = append(tags, fe.Tag())
				}
				assert.Equal(t, tt.wantTags, tags)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRequestReportsJSONFieldNames(t *testing.T) {
	req := &struct {
		DeckName string `json:"deck_name" validate:"required"`
		Count    int    `json:"count,omitempty" validate:"lte=10"`
	}{Count: 11}

	err := ValidateRequest(req)

	var verrs validator.ValidationErrors
	if assert.ErrorAs(t, err, &verrs) {
		assert.Len(t, verrs, 2)
		assert.Equal(t, "deck_name", verrs[0].Field())
		assert.Equal(t, "count", verrs[1].Field())
	}
}
