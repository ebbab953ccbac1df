package extract

import (
	"strings"

	"github.com/nao1215/ccrscan/internal/model"
)

// categoryKeyword maps name fragments to a category. Rules are checked in
// order and the first rule with a matching fragment wins.
type categoryKeyword struct {
	category model.Category
	keywords []string
}

var (
	volatileOrganicNames = []string{
		"benzene", "toluene", "xylene", "ethylbenzene", "styrene",
		"tetrachloroethylene", "trichloroethylene", "vinyl chloride",
		"carbon tetrachloride", "dichloromethane", "chlorobenzene",
	}

	inorganicNames = []string{
		"barium", "fluoride", "nitrate", "nitrite", "arsenic", "selenium",
		"cadmium", "chromium", "mercury", "antimony", "beryllium",
		"thallium", "cyanide",
	}

	categoryRules = []categoryKeyword{
		{model.CategoryLeadCopper, []string{"lead", "copper"}},
		{model.CategoryColiform, []string{"coliform", "e. coli", "e.coli"}},
		{model.CategoryTurbidity, []string{"turbidity"}},
		{model.CategoryOrganicCarbon, []string{"organic carbon", "toc"}},
		{model.CategoryDisinfection, []string{"haa5", "haloacetic", "tthm", "trihalomethane", "chlorite", "bromate"}},
		{model.CategoryRadioactive, []string{"radium", "uranium", "alpha", "beta", "gross"}},
		{model.CategoryVolatileOrganic, volatileOrganicNames},
		{model.CategoryInorganic, inorganicNames},
	}
)

// Categorize infers a contaminant's category from its name.
// Names matching no rule are CategoryOther.
func Categorize(name string) model.Category {
	lower := strings.ToLower(name)
	for _, rule := range categoryRules {
		if containsAny(lower, rule.keywords) {
			return rule.category
		}
	}
	return model.CategoryOther
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}
