// ABOUTME: Tool argument decoding, validation, and input schemas
// ABOUTME: Reports bad arguments as readable text instead of protocol errors
package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/google/jsonschema-go/jsonschema"
)

// datasetIDPattern is the 4x4 identifier shape, advertised in schemas.
const datasetIDPattern = `^[a-z0-9]{4}-[a-z0-9]{4}$`

var (
	validate *validator.Validate
	trans    ut.Translator
)

func init() {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ = uni.GetTranslator("en")

	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic(fmt.Sprintf("failed to register validator translations: %v", err))
	}
}

// argError is a problem with the caller's arguments. It is shown to the
// caller as plain text.
type argError struct {
	msg string
}

func (e *argError) Error() string { return e.msg }

// decodeArgs fills args from raw and validates it. Fields absent from raw
// keep the values args already holds.
func decodeArgs[T any](raw json.RawMessage, args *T) error {
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, args); err != nil {
			return &argError{msg: fmt.Sprintf("Error: invalid arguments: %v", err)}
		}
	}

	err := validate.Struct(args)
	if err == nil {
		return nil
	}

	var vErr validator.ValidationErrors
	if !errors.As(err, &vErr) || len(vErr) == 0 {
		return &argError{msg: fmt.Sprintf("Error: invalid arguments: %v", err)}
	}

	fe := vErr[0]
	if fe.Tag() == "required" {
		return &argError{msg: fmt.Sprintf("Error: '%s' parameter is required", fe.Field())}
	}
	return &argError{msg: "Error: " + fe.Translate(trans)}
}

// schemaFor derives the input schema of T and lets decorate refine
// individual properties.
func schemaFor[T any](decorate map[string]func(*jsonschema.Schema)) *jsonschema.Schema {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		panic(fmt.Sprintf("failed to build input schema for %T: %v", *new(T), err))
	}
	for name, fn := range decorate {
		prop, ok := schema.Properties[name]
		if !ok {
			panic(fmt.Sprintf("input schema for %T has no property %q", *new(T), name))
		}
		fn(prop)
	}
	return schema
}

func pattern(p string) func(*jsonschema.Schema) {
	return func(s *jsonschema.Schema) { s.Pattern = p }
}

func bounds(lo, hi float64, def int) func(*jsonschema.Schema) {
	return func(s *jsonschema.Schema) {
		s.Minimum = &lo
		s.Maximum = &hi
		s.Default = json.RawMessage(fmt.Sprintf("%d", def))
	}
}

func enum(def string, values ...string) func(*jsonschema.Schema) {
	return func(s *jsonschema.Schema) {
		s.Enum = make([]any, len(values))
		for i, v := range values {
			s.Enum[i] = v
		}
		s.Default = json.RawMessage(fmt.Sprintf("%q", def))
	}
}

func defaultBool(def bool) func(*jsonschema.Schema) {
	return func(s *jsonschema.Schema) {
		s.Default = json.RawMessage(fmt.Sprintf("%t", def))
	}
}

func examples(values ...string) func(*jsonschema.Schema) {
	return func(s *jsonschema.Schema) {
		s.Examples = make([]any, len(values))
		for i, v := range values {
			s.Examples[i] = v
		}
	}
}

// both applies several decorations to one property.
func both(fns ...func(*jsonschema.Schema)) func(*jsonschema.Schema) {
	return func(s *jsonschema.Schema) {
		for _, fn := range fns {
			fn(s)
		}
	}
}

// Arguments of each tool. Defaults are set before decoding.

type queryDatasetArgs struct {
	Domain    string `json:"domain" jsonschema:"Socrata domain hostname" validate:"required"`
	DatasetID string `json:"dataset_id" jsonschema:"Dataset identifier in 4x4 format (e.g., 'abcd-1234')" validate:"required"`
	Query     string `json:"query" jsonschema:"SoQL query string using Socrata Query Language syntax. Do not include FROM clauses - the dataset is implicit from the endpoint." validate:"required"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of rows to return" validate:"min=1,max=50000"`
	Format    string `json:"format,omitempty" jsonschema:"Output format for the results" validate:"omitempty,oneof=json csv geojson"`
}

type searchDatasetsArgs struct {
	Domain string `json:"domain" jsonschema:"Socrata domain to search within" validate:"required"`
	Query  string `json:"query" jsonschema:"Search keywords or phrases to find relevant datasets" validate:"required"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of datasets to return" validate:"min=1,max=100"`
}

type datasetInfoArgs struct {
	Domain    string `json:"domain" jsonschema:"Socrata domain hosting the dataset" validate:"required"`
	DatasetID string `json:"dataset_id" jsonschema:"Unique dataset identifier in 4x4 format" validate:"required"`
}

type naturalLanguageArgs struct {
	Domain    string `json:"domain" jsonschema:"Socrata domain for the dataset" validate:"required"`
	DatasetID string `json:"dataset_id" jsonschema:"Dataset identifier to query against" validate:"required"`
	Question  string `json:"question" jsonschema:"Natural language question about the data" validate:"required"`
	Execute   bool   `json:"execute,omitempty" jsonschema:"Whether to execute the generated query and return results"`
}

type analyzeDataArgs struct {
	Domain       string `json:"domain" jsonschema:"Socrata domain for the dataset" validate:"required"`
	DatasetID    string `json:"dataset_id" jsonschema:"Dataset identifier to analyze" validate:"required"`
	Query        string `json:"query" jsonschema:"SoQL query to analyze results from" validate:"required"`
	AnalysisType string `json:"analysis_type,omitempty" jsonschema:"Type of statistical analysis to perform" validate:"omitempty,oneof=summary trends correlations anomalies"`
}
