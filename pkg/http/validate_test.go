package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type orderForm struct {
	Token    string  `json:"token" validate:"required"`
	Venue    string  `json:"venue" default:"paper" validate:"oneof=paper live"`
	Slippage float64 `json:"slippage" default:"1" validate:"gte=0,lte=50"`
}

type walletForm struct {
	Wallet string `json:"wallet" validate:"wallet"`
}

func bind(t *testing.T, body string, dst interface{}) []ValidationError {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := echo.New().NewContext(req, httptest.NewRecorder())
	out := ReadAndValidateRequest(c, dst)
	if out == nil {
		return nil
	}
	errs, ok := out.([]ValidationError)
	if !ok {
		t.Fatalf("unexpected error type %T", out)
	}
	return errs
}

func bindForm(t *testing.T, body string) ([]ValidationError, *orderForm) {
	t.Helper()
	form := &orderForm{}
	return bind(t, body, form), form
}

func byField(errs []ValidationError, field string) (ValidationError, bool) {
	for _, e := range errs {
		if e.Field == field {
			return e, true
		}
	}
	return ValidationError{}, false
}

func TestValidateAppliesDefaults(t *testing.T) {
	errs, form := bindForm(t, `{"token":"Mint111"}`)
	if errs != nil {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if form.Venue != "paper" || form.Slippage != 1 {
		t.Fatalf("defaults not applied: %+v", form)
	}
}

func TestValidateReportsWireNamesAndTradingMessages(t *testing.T) {
	errs, _ := bindForm(t, `{"venue":"cex","slippage":80}`)

	tok, ok := byField(errs, "token")
	if !ok || tok.Code != "ERR_REQUIRED" || !strings.Contains(tok.Message, "mint address") {
		t.Fatalf("token error = %+v", tok)
	}
	slip, ok := byField(errs, "slippage")
	if !ok || slip.Message != "slippage above 50% is refused" || slip.Params["max"] != "50" {
		t.Fatalf("slippage error = %+v", slip)
	}
	venue, ok := byField(errs, "venue")
	if !ok || !strings.Contains(venue.Message, `"cex" is not supported`) {
		t.Fatalf("venue error = %+v", venue)
	}
}

func TestRegisterRuleMessage(t *testing.T) {
	err := RegisterRule("wallet", func(fl validator.FieldLevel) bool {
		return strings.HasPrefix(fl.Field().String(), "W")
	}, "%s must be a known wallet address")
	if err != nil {
		t.Fatal(err)
	}

	errs := bind(t, `{"wallet":"nope"}`, &walletForm{})
	w, ok := byField(errs, "wallet")
	if !ok || w.Code != "ERR_WALLET" || w.Message != "wallet must be a known wallet address" {
		t.Fatalf("wallet error = %+v", w)
	}
}

func TestValidateMalformedBody(t *testing.T) {
	errs, _ := bindForm(t, `{"token":`)
	if len(errs) != 1 || errs[0].Code != "ERR_MALFORMED" {
		t.Fatalf("errs = %+v", errs)
	}
}
