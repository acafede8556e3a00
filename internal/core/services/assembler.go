package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/plancheck/internal/core/domain"
	"github.com/custodia-labs/plancheck/internal/core/ports/driven"
)

// Banner lines framing the context blocks.
const (
	bannerRule       = "═══════════════════════════════════════════════════════════"
	separatorRule    = "───────────────────────────────────────────────────────────"
	userBlockOpen    = "║  KULLANICI İŞ PLANI DOSYASI - TAM İÇERİK                ║"
	userBlockClose   = "║  KULLANICI İŞ PLANI DOSYASI SONU                       ║"
	guidelineBanner  = "║  YÖNERGE PARÇALARI (Değerlendirme Kriterleri)         ║"
	userBlockWarning = "⚠️ ÇOK ÖNEMLİ: AŞAĞIDA KULLANICININ YÜKLEDİĞİ İŞ PLANI DOSYASININ TAM İÇERİĞİ BULUNMAKTADIR."
	userBlockUseIt   = "BU İÇERİĞİ MUTLAKA KULLANARAK DEĞERLENDİRME YAPMALISIN."
	userBlockNever   = "ASLA \"dosya yükleyemedim\" veya \"içerik göremiyorum\" gibi mesajlar verme."

	chunkSeparator = "\n\n" + separatorRule + "\n\n"
)

// Placeholders for empty context slots.
const (
	EmptyContext   = "Yönerge parçası veya kullanıcı dosyası bulunamadı."
	EmptyUser      = "Kullanıcı dosyası bulunamadı."
	EmptyGuideline = "Yönerge parçası bulunamadı."
)

// sectionScoreSuffix is appended to every section evaluation prompt.
const sectionScoreSuffix = "\n\n5. *Puan (0-100)*\n" +
	"- Bu bölüm için 0-100 arası tam sayı puan ver.\n" +
	"- Raporun EN SONUNA tek satır olarak \"Bölüm Puanı: XX/100\" ekle (XX 0-100 arası tam sayı)."

// Assembler renders retrieval results and prompt templates into LLM input.
// It performs no I/O beyond reading templates from the prompt store.
type Assembler struct {
	prompts driven.PromptStore
}

// NewAssembler creates an assembler reading templates from prompts.
func NewAssembler(prompts driven.PromptStore) *Assembler {
	return &Assembler{prompts: prompts}
}

// SetPromptStore replaces the template source.
func (a *Assembler) SetPromptStore(store driven.PromptStore) {
	a.prompts = store
}

// BuildContext renders the user block followed by the guideline block.
func (a *Assembler) BuildContext(guideline []domain.GuidelineMatch, user []domain.UserMatch) string {
	if len(guideline) == 0 && len(user) == 0 {
		return EmptyContext
	}

	var lines []string
	if len(user) == 0 {
		lines = append(lines, EmptyUser, "")
	} else {
		lines = append(lines,
			bannerRule, userBlockOpen, bannerRule, "",
			userBlockWarning, userBlockUseIt, userBlockNever, "",
			separatorRule, "",
			renderUserChunks(user), "",
			bannerRule, userBlockClose, bannerRule, "",
		)
	}

	if len(guideline) == 0 {
		lines = append(lines, EmptyGuideline)
	} else {
		sections := make([]string, len(guideline))
		for i, m := range guideline {
			sections[i] = renderSection(m.Section)
		}
		lines = append(lines,
			bannerRule, guidelineBanner, bannerRule, "",
			strings.Join(sections, chunkSeparator), "",
		)
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func renderUserChunks(user []domain.UserMatch) string {
	parts := make([]string, len(user))
	for i, m := range user {
		total := m.Chunk.TotalChunks
		if total <= 0 {
			total = len(user)
		}
		header := fmt.Sprintf("[BÖLÜM %d/%d", m.Chunk.ChunkIndex+1, total)
		if m.Chunk.FileName != "" {
			header += " - " + m.Chunk.FileName
		}
		parts[i] = header + "]\n" + m.Chunk.Text
	}
	return strings.Join(parts, chunkSeparator)
}

func renderSection(s domain.SectionRecord) string {
	parts := []string{fmt.Sprintf("## %s - %s", s.SectionCode, s.Title)}
	if s.Purpose != "" {
		parts = append(parts, "**Amaç:** "+s.Purpose)
	}
	if s.SearchedElements != "" {
		parts = append(parts, "**Aranan Unsurlar:**\n"+s.SearchedElements)
	}
	if s.ScoringLogic != "" {
		parts = append(parts, "**Puanlama Mantığı:**\n"+s.ScoringLogic)
	}
	return strings.Join(parts, "\n\n")
}

// BuildSystemPrompt composes the system prompt for a resolved mode.
func (a *Assembler) BuildSystemPrompt(contextText string, mode domain.QueryMode, hasUserFile bool) (string, error) {
	base, err := a.load(driven.PromptSystemBase)
	if err != nil {
		return "", err
	}

	noteName := driven.PromptNoFile
	if hasUserFile {
		noteName = driven.PromptGuardrails
	}
	note, err := a.load(noteName)
	if err != nil {
		return "", err
	}

	closingName := driven.PromptAnswerInstructions
	if mode == domain.QueryModeEvaluate {
		closingName = driven.PromptEvaluationRubric
	}
	closing, err := a.load(closingName)
	if err != nil {
		return "", err
	}

	return base + "\n\n" + note + "\n\nBağlam:\n" + contextText + "\n\n" + closing, nil
}

// SectionPrompt returns the user message that evaluates one rubric section.
func (a *Assembler) SectionPrompt(letter domain.SectionLetter) (string, error) {
	section, ok := letter.Section()
	if !ok {
		return "", fmt.Errorf("%w: unknown section %q", domain.ErrInvalidInput, letter)
	}
	tmpl, err := a.load(driven.PromptSectionEvaluation)
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf(tmpl, section.Title, string(section.Letter), strings.Join(section.Scope, ", "))
	return prompt + sectionScoreSuffix, nil
}

func (a *Assembler) load(name string) (string, error) {
	if a.prompts == nil {
		return "", fmt.Errorf("%w: prompt store", domain.ErrConfigurationMissing)
	}
	text, err := a.prompts.Load(name)
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", name, err)
	}
	return text, nil
}
