package memento

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ContentForm is the raw editor input before normalization.
type ContentForm struct {
	Title       string `json:"title" validate:"required"`
	ContentType string `json:"content_type" validate:"required,oneof=note journal story memory other"`
	Content     string `json:"content" validate:"required"`
	Tags        string `json:"tags"`
	IsPrivate   *bool  `json:"is_private"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// Report fields by their JSON names
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks the required fields and the content type enumeration. Other
// fields are unconstrained.
func (f *ContentForm) Validate() error {
	err := formValidator().Struct(f)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		verr.Fields = append(verr.Fields, FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	verr.sort()
	return verr
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "title":
		return "Title is required"
	case "content":
		return "Content is required"
	case "content_type":
		names := make([]string, 0, len(ContentTypes()))
		for _, t := range ContentTypes() {
			names = append(names, string(t))
		}
		return "Content type must be one of " + strings.Join(names, ", ")
	}
	return fe.Error()
}

// Private reports the is_private value, which defaults to true when absent.
func (f *ContentForm) Private() bool {
	if f.IsPrivate == nil {
		return true
	}
	return *f.IsPrivate
}

// Record normalizes the form into the row sent to the store. owner may be nil.
func (f *ContentForm) Record(owner *User) *ContentRecord {
	record := &ContentRecord{
		Title:       f.Title,
		ContentType: ContentType(f.ContentType),
		Content:     f.Content,
		Tags:        ParseTags(f.Tags),
		IsPrivate:   f.Private(),
	}
	if owner != nil && owner.ID != "" {
		id := owner.ID
		record.UserID = &id
	}
	return record
}
