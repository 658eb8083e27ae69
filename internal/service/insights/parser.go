package insights

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/azhar1598/xplore-be/internal/constants"
	"github.com/azhar1598/xplore-be/internal/domain"
	"github.com/azhar1598/xplore-be/internal/util"
	"github.com/azhar1598/xplore-be/pkg/errors"
)

//go:embed insight.schema.json
var insightSchemaJSON string

var (
	insightSchemaOnce sync.Once
	insightSchema     *gojsonschema.Schema
	insightSchemaErr  error
)

func loadInsightSchema() (*gojsonschema.Schema, error) {
	insightSchemaOnce.Do(func() {
		insightSchema, insightSchemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(insightSchemaJSON))
	})
	return insightSchema, insightSchemaErr
}

const codeFence = "```"

// StripCodeFence removes markdown code fences (optionally tagged "json") around
// text, repeating until no fence remains at either end.
func StripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	for {
		prev := s
		if strings.HasPrefix(s, codeFence) {
			s = strings.TrimPrefix(s, codeFence)
			if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
				s = s[4:]
			}
			s = strings.TrimSpace(s)
		}
		if strings.HasSuffix(s, codeFence) {
			s = strings.TrimSpace(strings.TrimSuffix(s, codeFence))
		}
		if s == prev {
			return s
		}
	}
}

// ParseInsight coerces generated text into a BusinessInsight. Anything that is
// not a JSON object carrying the required sections is a MalformedResponseError.
func ParseInsight(raw, provider string) (*domain.BusinessInsight, error) {
	cleaned := StripCodeFence(raw)
	if cleaned == "" {
		return nil, errors.NewMalformedResponseError("empty generated response", provider, nil)
	}

	schema, err := loadInsightSchema()
	if err != nil {
		return nil, fmt.Errorf("load insight schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, malformed("generated response is not valid JSON", provider, err, cleaned)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return nil, malformed("generated response does not match insight shape", provider,
			fmt.Errorf("%s", strings.Join(problems, "; ")), cleaned)
	}

	var insight domain.BusinessInsight
	if err := json.Unmarshal([]byte(cleaned), &insight); err != nil {
		return nil, malformed("generated response could not be decoded", provider, err, cleaned)
	}
	return &insight, nil
}

func malformed(message, provider string, cause error, body string) *errors.MalformedResponseError {
	err := errors.NewMalformedResponseError(message, provider, cause)
	err.Context["preview"] = util.TruncateString(body, constants.AIInputLimits.ResponsePreviewLength)
	return err
}
