package prompt

import (
	"fmt"
	"strings"

	"github.com/azhar1598/xplore-be/internal/util"
)

type businessInsightData struct {
	BusinessName string
	Market       string
	Currency     string
}

// BuildBusinessInsightPrompt renders the generation prompt for a business name.
// The name is percent-decoded when possible and whitespace runs are collapsed.
func BuildBusinessInsightPrompt(businessName string) (string, error) {
	name := util.CollapseWhitespace(util.DecodeQueryText(businessName))
	if name == "" {
		return "", fmt.Errorf("business name is empty")
	}

	out, err := DefaultPromptBuilder().Render(TemplateBusinessInsight, businessInsightData{
		BusinessName: name,
		Market:       "India",
		Currency:     "₹",
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
