package statement

// BankTemplate identifies the bank layout a statement is rendered with.
type BankTemplate string

const (
	TemplatePNB      BankTemplate = "PNB"
	TemplateSBI      BankTemplate = "SBI"
	TemplateHDFC     BankTemplate = "HDFC"
	TemplateICICI    BankTemplate = "ICICI"
	TemplateAXIS     BankTemplate = "AXIS"
	TemplateKOTAK    BankTemplate = "KOTAK"
	TemplateIDFC     BankTemplate = "IDFC"
	TemplateINDUSIND BankTemplate = "INDUSIND"
	TemplateCBI      BankTemplate = "CBI"
	TemplateYES      BankTemplate = "YES"
	TemplateBOB      BankTemplate = "BOB"
	TemplateUCO      BankTemplate = "UCO"
	TemplateIOB      BankTemplate = "IOB"
	TemplateCANARA   BankTemplate = "CANARA"
	TemplateUNION    BankTemplate = "UNION"
)

// KnownTemplates lists every bank identifier clients may send. Not all of
// them have a registered renderer.
var KnownTemplates = []BankTemplate{
	TemplatePNB, TemplateSBI, TemplateHDFC, TemplateICICI, TemplateAXIS,
	TemplateKOTAK, TemplateIDFC, TemplateINDUSIND, TemplateCBI, TemplateYES,
	TemplateBOB, TemplateUCO, TemplateIOB, TemplateCANARA, TemplateUNION,
}

// IsKnown reports whether t is one of KnownTemplates.
func (t BankTemplate) IsKnown() bool {
	for _, known := range KnownTemplates {
		if known == t {
			return true
		}
	}
	return false
}

func (t BankTemplate) String() string { return string(t) }
