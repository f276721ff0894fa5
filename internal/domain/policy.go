package domain

import (
	"regexp"
	"sort"
	"strings"
)

// TermCategory groups forbidden terms by the framing they introduce.
type TermCategory string

const (
	CategoryClinical     TermCategory = "clinical"
	CategorySpiritual    TermCategory = "spiritual"
	CategoryJournaling   TermCategory = "journaling"
	CategoryPersonality  TermCategory = "personality"
	CategoryInterpretive TermCategory = "interpretive"
	CategoryCoaching     TermCategory = "coaching"
	CategoryDetection    TermCategory = "detection"
)

// ForbiddenTerm is one entry of the vocabulary rulebook.
type ForbiddenTerm struct {
	Term       string       `json:"term"`
	Language   string       `json:"language"`
	Suggestion string       `json:"suggestion"`
	Category   TermCategory `json:"category"`
}

// DefaultSuggestion is returned for a term missing from the table.
const DefaultSuggestion = "use structural framing"

// Policy is the immutable rulebook shared by all guards. Construct it once
// and pass it to guards; nothing mutates it after construction.
type Policy struct {
	Terms                 []ForbiddenTerm
	TerminologyExclusions []*regexp.Regexp
	SecurityExclusions    []*regexp.Regexp
	SelfReferenceMarkers  []string

	BinaryExtensions []string
	TypedExtensions  []string

	ClosedModules      []string
	ProtectedModules   []string
	ModuleDependencies map[string][]string

	FrozenAPIDir      string
	LockfileName      string
	ManifestName      string
	WorkspaceProtocol string
	InternalScope     string
}

// SortedTerms returns a copy of the terms ordered by descending length, so
// multi-word phrases are tested before the single words they contain.
func (p Policy) SortedTerms() []ForbiddenTerm {
	terms := make([]ForbiddenTerm, len(p.Terms))
	copy(terms, p.Terms)
	sort.SliceStable(terms, func(i, j int) bool {
		return len([]rune(terms[i].Term)) > len([]rune(terms[j].Term))
	})
	return terms
}

// Suggestion finds the replacement for a forbidden term.
func (p Policy) Suggestion(term string) string {
	for _, t := range p.Terms {
		if strings.EqualFold(t.Term, term) {
			return t.Suggestion
		}
	}
	return DefaultSuggestion
}

// ClosedModule returns the CLOSED prefix containing path, if any.
func (p Policy) ClosedModule(path string) (string, bool) {
	return matchPrefix(p.ClosedModules, path)
}

// ProtectedModule returns the PROTECTED prefix containing path, if any.
func (p Policy) ProtectedModule(path string) (string, bool) {
	return matchPrefix(p.ProtectedModules, path)
}

func (p Policy) IsClosed(path string) bool {
	_, ok := p.ClosedModule(path)
	return ok
}

func (p Policy) IsProtected(path string) bool {
	_, ok := p.ProtectedModule(path)
	return ok
}

var modulePathRe = regexp.MustCompile(`^(packages/[^/]+)`)

// ModuleFor returns the "packages/<name>" module owning path, or "".
func (p Policy) ModuleFor(path string) string {
	m := modulePathRe.FindStringSubmatch(path)
	if m == nil {
		return ""
	}
	return m[1]
}

// AllowsInternalDependency reports whether module may depend on pkg. Modules
// without a rule are unrestricted.
func (p Policy) AllowsInternalDependency(module, pkg string) bool {
	allowed, ok := p.ModuleDependencies[module]
	if !ok {
		return true
	}
	for _, a := range allowed {
		if a == pkg {
			return true
		}
	}
	return false
}

// IsBinary reports whether path has a binary asset extension.
func (p Policy) IsBinary(path string) bool {
	return hasExtension(p.BinaryExtensions, path)
}

// IsTyped reports whether path is a statically typed source file.
func (p Policy) IsTyped(path string) bool {
	return hasExtension(p.TypedExtensions, path)
}

func matchPrefix(prefixes []string, path string) (string, bool) {
	for _, mod := range prefixes {
		if strings.HasPrefix(path, mod) {
			return mod, true
		}
	}
	return "", false
}

func hasExtension(exts []string, path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func anyMatch(patterns []*regexp.Regexp, path string) bool {
	for _, re := range patterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// TerminologyExcluded reports whether path is exempt from vocabulary checks.
func (p Policy) TerminologyExcluded(path string) bool {
	return anyMatch(p.TerminologyExclusions, path)
}

// SecurityExcluded reports whether path is exempt from secret scanning.
func (p Policy) SecurityExcluded(path string) bool {
	return anyMatch(p.SecurityExclusions, path)
}

// DefaultPolicy returns a fresh copy of the built-in rulebook.
func DefaultPolicy() Policy {
	return Policy{
		Terms:                 defaultTerms(),
		TerminologyExclusions: defaultTerminologyExclusions(),
		SecurityExclusions:    defaultSecurityExclusions(),
		SelfReferenceMarkers: []string{
			"FORBIDDEN_TERMS",
			"getForbiddenTerm",
			"@silence/sentinel",
			"// sentinel-ignore",
		},
		BinaryExtensions: []string{
			".png", ".jpg", ".jpeg", ".gif", ".ico", ".svg",
			".woff", ".woff2", ".ttf", ".eot",
		},
		TypedExtensions: []string{".ts", ".tsx"},
		ClosedModules: []string{
			"packages/events",
			"packages/contracts",
		},
		ProtectedModules: []string{
			"packages/safety",
			"packages/voice",
		},
		ModuleDependencies: map[string][]string{
			"packages/contracts":  {},
			"packages/events":     {"@silence/contracts"},
			"packages/core":       {"@silence/contracts", "@silence/events"},
			"packages/archetypes": {"@silence/contracts", "@silence/events", "@silence/core"},
			"packages/safety":     {"@silence/contracts", "@silence/events"},
			"packages/language":   {"@silence/contracts", "@silence/events", "@silence/core"},
			"packages/validator":  {"@silence/contracts", "@silence/events", "@silence/core"},
			"packages/ui":         {"@silence/contracts", "@silence/events", "@silence/core", "@silence/archetypes"},
			"packages/voice":      {"@silence/contracts", "@silence/events", "@silence/core"},
		},
		FrozenAPIDir:      "packages/contracts/",
		LockfileName:      "pnpm-lock.yaml",
		ManifestName:      "package.json",
		WorkspaceProtocol: "workspace:",
		InternalScope:     "@silence/",
	}
}

func defaultTerminologyExclusions() []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(`(?i)sentinel`),
		regexp.MustCompile(`(?i)\.policy\.(ts|js)$`),
		regexp.MustCompile(`(?i)COMPLIANCE\.md$`),
		regexp.MustCompile(`(?i)SAFETY\.md$`),
		regexp.MustCompile(`(?i)SENTINEL.*\.md$`),
		regexp.MustCompile(`(?i)MEGA_BUILD`),
		regexp.MustCompile(`node_modules`),
		regexp.MustCompile(`\.next`),
		regexp.MustCompile(`dist/`),
		regexp.MustCompile(`pnpm-lock\.yaml$`),
	}
}

func defaultSecurityExclusions() []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(`node_modules`),
		regexp.MustCompile(`\.next`),
		regexp.MustCompile(`dist/`),
		regexp.MustCompile(`pnpm-lock\.yaml$`),
		regexp.MustCompile(`\.test\.(ts|tsx|js|jsx)$`),
		regexp.MustCompile(`\.spec\.(ts|tsx|js|jsx)$`),
		regexp.MustCompile(`\.md$`),
		regexp.MustCompile(`security-guard\.(ts|js)$`),
		regexp.MustCompile(`(?i)sentinel.*guard`),
	}
}

func defaultTerms() []ForbiddenTerm {
	en := func(term, suggestion string, c TermCategory) ForbiddenTerm {
		return ForbiddenTerm{Term: term, Language: "en", Suggestion: suggestion, Category: c}
	}
	pl := func(term, suggestion string, c TermCategory) ForbiddenTerm {
		return ForbiddenTerm{Term: term, Language: "pl", Suggestion: suggestion, Category: c}
	}

	return []ForbiddenTerm{
		en("therapy", "structural analysis", CategoryClinical),
		en("diagnosis", "pattern recognition", CategoryClinical),
		en("advice", "framework output", CategoryClinical),
		en("treatment", "structural process", CategoryClinical),
		en("healing", "structural integration", CategoryClinical),
		en("wellness", "structural coherence", CategoryClinical),

		en("spiritual", "structural", CategorySpiritual),
		en("mystical", "abstract", CategorySpiritual),
		en("divine", "foundational", CategorySpiritual),
		en("cosmic", "systemic", CategorySpiritual),
		en("horoscope", "structural pattern", CategorySpiritual),
		en("fortune", "projection", CategorySpiritual),

		en("entry", "record", CategoryJournaling),
		en("journal", "log", CategoryJournaling),
		en("reflection", "review", CategoryJournaling),
		en("note", "annotation", CategoryJournaling),

		en("trait", "structural attribute", CategoryPersonality),
		en("personality", "structural pattern", CategoryPersonality),
		en("characteristic", "structural property", CategoryPersonality),

		en("problem", "tension", CategoryInterpretive),
		en("issue", "structural tension", CategoryInterpretive),
		en("conflict", "polarity", CategoryInterpretive),
		en("purpose", "orientation", CategoryInterpretive),
		en("meaning", "structural significance", CategoryInterpretive),
		en("reason", "structural basis", CategoryInterpretive),
		en("interpretation", "structural reading", CategoryInterpretive),
		en("reading", "structural analysis", CategoryInterpretive),
		en("truth", "structural fact", CategoryInterpretive),
		en("answer", "output", CategoryInterpretive),
		en("verdict", "structural conclusion", CategoryInterpretive),

		en("coaching", "structural guidance", CategoryCoaching),
		en("personality type", "structural pattern", CategoryPersonality),
		en("personality test", "structural assessment", CategoryPersonality),
		en("emotional analysis", "structural signal analysis", CategoryDetection),
		en("mood tracking", "signal monitoring", CategoryDetection),
		en("tarot card", "archetype card", CategorySpiritual),
		en("oracle", "pattern engine", CategorySpiritual),
		en("divination", "pattern projection", CategorySpiritual),
		en("personality profiling", "structural mapping", CategoryPersonality),
		en("typing", "structural classification", CategoryPersonality),
		en("spiritual guidance", "structural orientation", CategorySpiritual),
		en("mystical reading", "structural analysis", CategorySpiritual),
		en("emotion detection", "signal detection", CategoryDetection),
		en("mood from voice", "vocal signal analysis", CategoryDetection),

		pl("terapia", "analiza strukturalna", CategoryClinical),
		pl("diagnoza", "rozpoznanie wzorca", CategoryClinical),
		pl("porada", "wynik frameworku", CategoryClinical),
		pl("leczenie", "proces strukturalny", CategoryClinical),
		pl("uzdrawianie", "integracja strukturalna", CategoryClinical),
		pl("wellness", "koherencja strukturalna", CategoryClinical),

		pl("duchowy", "strukturalny", CategorySpiritual),
		pl("mistyczny", "abstrakcyjny", CategorySpiritual),
		pl("boski", "fundamentalny", CategorySpiritual),
		pl("kosmiczny", "systemowy", CategorySpiritual),
		pl("horoskop", "wzorzec strukturalny", CategorySpiritual),
		pl("przepowiednia", "projekcja", CategorySpiritual),

		pl("wpis", "rekord", CategoryJournaling),
		pl("dziennik", "log", CategoryJournaling),
		pl("refleksja", "przeglad", CategoryJournaling),
		pl("notatka", "adnotacja", CategoryJournaling),

		pl("cecha", "atrybut strukturalny", CategoryPersonality),
		pl("osobowość", "wzorzec strukturalny", CategoryPersonality),

		pl("problem", "napiecie", CategoryInterpretive),
		pl("kwestia", "napiecie strukturalne", CategoryInterpretive),
		pl("konflikt", "polaryzacja", CategoryInterpretive),
		pl("cel", "orientacja", CategoryInterpretive),
		pl("znaczenie", "znaczenie strukturalne", CategoryInterpretive),
		pl("powód", "podstawa strukturalna", CategoryInterpretive),
		pl("interpretacja", "odczyt strukturalny", CategoryInterpretive),
		pl("prawda", "fakt strukturalny", CategoryInterpretive),
		pl("odpowiedź", "wynik", CategoryInterpretive),
		pl("werdykt", "konkluzja strukturalna", CategoryInterpretive),

		pl("coaching", "orientacja strukturalna", CategoryCoaching),
		pl("test osobowości", "ocena strukturalna", CategoryPersonality),
		pl("analiza emocjonalna", "analiza sygnalu strukturalnego", CategoryDetection),
		pl("śledzenie nastroju", "monitorowanie sygnalu", CategoryDetection),
		pl("karta tarota", "karta archetypu", CategorySpiritual),
		pl("wyrocznia", "silnik wzorcow", CategorySpiritual),
		pl("wróżba", "projekcja wzorca", CategorySpiritual),
		pl("profilowanie osobowości", "mapowanie strukturalne", CategoryPersonality),
		pl("duchowe przewodnictwo", "orientacja strukturalna", CategorySpiritual),
		pl("mistyczne czytanie", "analiza strukturalna", CategorySpiritual),
		pl("wykrywanie emocji", "detekcja sygnalu", CategoryDetection),
	}
}
