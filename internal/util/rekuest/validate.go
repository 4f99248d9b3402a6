package rekuest

import (
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"exusiai.dev/dashsync/internal/pkg/dserr"
	"exusiai.dev/dashsync/internal/util"
)

var (
	Validate   = util.NewValidator()
	translator ut.Translator
)

func init() {
	locale := en.New()
	translator, _ = ut.New(locale, locale).GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(Validate, translator); err != nil {
		log.Warn().Err(err).Str("locale", "en").Msg("could not register translation")
	}

	err := Validate.RegisterTranslation("routepath", translator, func(ut ut.Translator) error {
		return ut.Add("routepath", "{0} must be an absolute path such as /dashboard/", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("routepath", fe.Field())
		return t
	})
	if err != nil {
		log.Warn().Err(err).Msg("could not register translation for function routepath")
	}
}

type ErrorResponse struct {
	Field     string `json:"field,omitempty"`
	Violation string `json:"violation"`
	Message   string `json:"message"`
}

func translate(ve validator.ValidationErrors) []*ErrorResponse {
	trans := make([]*ErrorResponse, 0, len(ve))
	for _, fe := range ve {
		trans = append(trans, &ErrorResponse{
			Field:     fe.Namespace(),
			Violation: fe.Tag(),
			Message:   fe.Translate(translator),
		})
	}
	return trans
}

func validateStruct(s any) []*ErrorResponse {
	err := Validate.Struct(s)
	if err != nil {
		errs, ok := err.(validator.ValidationErrors)
		if !ok {
			panic(err)
		}
		return translate(errs)
	}
	return nil
}

// ValidBody will get the body from *fiber.Ctx using fiber#BodyParser(),
// and validate it using the validator singleton. If the validation passed it will write the unmarshalled body
// to dest and return a nil, otherwise it will return an error. Notice that dest shall
// always be a pointer.
func ValidBody(ctx *fiber.Ctx, dest any) error {
	if err := ctx.BodyParser(dest); err != nil {
		return dserr.ErrInvalidReq.Msg("invalid request: %s", err)
	}

	if err := validateStruct(dest); err != nil {
		return dserr.NewInvalidViolations(err)
	}

	return nil
}
