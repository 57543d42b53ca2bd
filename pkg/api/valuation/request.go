package valuation

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"dcf_valuation/pkg/core/export"
	"dcf_valuation/pkg/core/scenario"
	"dcf_valuation/pkg/core/utils"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

// Options are the request fields that steer the response rather than the
// valuation itself. They travel in the same JSON body as the scenario.
type Options struct {
	Company            string `json:"company" validate:"omitempty,max=200"`
	Years              int    `json:"years" validate:"omitempty,min=1,max=100"`
	IncludeSensitivity bool   `json:"include_sensitivity"`
	Commentary         bool   `json:"commentary"`
	Units              string `json:"units" validate:"omitempty,oneof=millions absolute"`
	Sensitivity        *struct {
		DiscountRates       []float64 `json:"discount_rates" validate:"omitempty,max=200"`
		TerminalGrowthRates []float64 `json:"terminal_growth_rates" validate:"omitempty,max=200"`
	} `json:"sensitivity" validate:"omitempty"`
}

// ExportUnits maps the units option to export units (millions by default).
func (o Options) ExportUnits() export.Units {
	if o.Units == "absolute" {
		return export.Absolute
	}
	return export.Millions
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// requestError is a client error reported as 400.
type requestError struct {
	Field string
	Err   error
}

func (e *requestError) Error() string { return e.Err.Error() }
func (e *requestError) Unwrap() error { return e.Err }

// decodeRequest reads the body once and decodes it twice: into Options,
// checked by the validator, and into a Scenario over the defaults. An empty
// body is the default scenario.
func (h *Handler) decodeRequest(r *http.Request) (*scenario.Scenario, Options, error) {
	var opts Options
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, opts, &requestError{Err: fmt.Errorf("failed to read body: %w", err)}
	}
	if len(body) > maxBodyBytes {
		return nil, opts, &requestError{Err: errors.New("request body too large")}
	}
	if strings.TrimSpace(string(body)) == "" {
		s := scenario.Default()
		return &s, opts, nil
	}

	if err := utils.DecodeLenient(body, &opts); err != nil {
		return nil, opts, &requestError{Err: fmt.Errorf("invalid JSON body: %w", err)}
	}
	if err := h.validate.Struct(opts); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return nil, opts, &requestError{
				Field: fe.Field(),
				Err:   fmt.Errorf("%s failed %q validation", fe.Namespace(), fe.Tag()),
			}
		}
		return nil, opts, &requestError{Err: err}
	}

	s, err := scenario.Parse(body, scenario.FormatJSON)
	if err != nil {
		return nil, opts, &requestError{Err: fmt.Errorf("invalid scenario: %w", err)}
	}
	return s, opts, nil
}
