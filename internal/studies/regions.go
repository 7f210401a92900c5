package studies

import "strings"

// regionRules maps category keywords to report regions. Order matters:
// the first rule whose keyword appears in the category name wins.
var regionRules = []struct {
	keywords []string
	region   string
}{
	{[]string{"lung", "airway"}, "LUNGS"},
	{[]string{"pleura"}, "PLEURA"},
	{[]string{"heart", "pericard", "cardiac"}, "HEART"},
	{[]string{"vessel", "vascula"}, "VASCULATURE"},
	{[]string{"mediastin", "lymph node"}, "MEDIASTINUM"},
	{[]string{"abdomen"}, "UPPER ABDOMEN"},
	{[]string{"bone"}, "SKELETAL PROCESS"},
	{[]string{"spine"}, "SPINE"},
	{[]string{"soft tissue"}, "SOFT TISSUES"},
	{[]string{"neck"}, "NECK"},
	{[]string{"head", "brain"}, "HEAD"},
}

// RegionFor maps a checklist category name to the report region it belongs to.
// Unmapped categories use their own name in capitals.
func RegionFor(category string) string {
	name := strings.ToLower(strings.TrimSpace(category))
	for _, rule := range regionRules {
		for _, kw := range rule.keywords {
			if strings.Contains(name, kw) {
				return rule.region
			}
		}
	}
	return strings.ToUpper(strings.TrimSpace(category))
}
