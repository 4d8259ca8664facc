package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/lintang-b-s/Stoplocator/pkg/finder"
	"github.com/lintang-b-s/Stoplocator/pkg/util"
	"go.uber.org/zap"
)

type envelope map[string]interface{}

// requestValidator validates request dtos and renders english messages.
type requestValidator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func newRequestValidator() *requestValidator {
	validate := validator.New()
	_ = validate.RegisterValidation("routetype", func(fl validator.FieldLevel) bool {
		return finder.IsRouteType(fl.Field().String())
	})

	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)
	_ = validate.RegisterTranslation("routetype", trans,
		func(ut ut.Translator) error {
			return ut.Add("routetype", "{0} must be a known route type", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("routetype", fe.Field())
			return t
		})
	return &requestValidator{validate: validate, trans: trans}
}

func (rv *requestValidator) Struct(s interface{}) error {
	err := rv.validate.Struct(s)
	if err == nil {
		return nil
	}
	vv := translateError(err, rv.trans)
	vvString := []string{}
	for _, v := range vv {
		vvString = append(vvString, v.Error())
	}
	return fmt.Errorf("validation error: %v", vvString)
}

func translateError(err error, trans ut.Translator) []error {
	if err == nil {
		return nil
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}
	errs := make([]error, 0, len(validatorErrs))
	for _, e := range validatorErrs {
		errs = append(errs, errors.New(e.Translate(trans)))
	}
	return errs
}

func (api *locatorAPI) writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func (api *locatorAPI) logError(r *http.Request, err error) {
	api.log.Error("request failed",
		zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
}

func (api *locatorAPI) errorResponse(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var resp errorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	if err := api.writeJSON(w, status, envelope{"error": resp.Error}, nil); err != nil {
		api.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (api *locatorAPI) ServerErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.logError(r, err)
	api.errorResponse(w, r, http.StatusInternalServerError, "INTERNAL",
		util.MessageInternalServerError)
}

func (api *locatorAPI) BadRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.errorResponse(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error())
}

func (api *locatorAPI) NotFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.errorResponse(w, r, http.StatusNotFound, "NOT_FOUND", err.Error())
}

// getStatusCode maps the util error code of err to a response.
func (api *locatorAPI) getStatusCode(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		api.errorResponse(w, r, http.StatusGatewayTimeout, "TIMEOUT", "request timed out")
		return
	}
	switch util.ErrorCode(err) {
	case util.ErrNotFound:
		api.NotFoundResponse(w, r, err)
	case util.ErrBadParamInput:
		api.BadRequestResponse(w, r, err)
	case util.ErrConflict:
		api.errorResponse(w, r, http.StatusConflict, "CONFLICT", err.Error())
	default:
		api.ServerErrorResponse(w, r, err)
	}
}
