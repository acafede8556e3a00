package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/plancheck/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads prompt templates from user-editable files on disk,
// falling back to the embedded defaults.
//
// Files are only created on first Load, not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// DefaultPrompt returns the embedded template for name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptSystemBase: `Sen bir iş planı danışmanısın. Sana verilen yönerge parçalarına dayanarak kullanıcının sorularını yanıtla veya taslaklarını değerlendir. Yönerge dışına çıkma.`,

	driven.PromptGuardrails: `🚨🚨🚨 ÇOK ÖNEMLİ - MUTLAKA OKU - KULLANICI DOSYASI MEVCUT 🚨🚨🚨

AŞAĞIDAKİ BAĞLAMDA "KULLANICI İŞ PLANI DOSYASI" BÖLÜMÜNDE KULLANICININ YÜKLEDİĞİ İŞ PLANININ TAM İÇERİĞİ BULUNMAKTADIR.
BU İÇERİK BAĞLAMIN EN BAŞINDA YER ALMAKTADIR.

BU İÇERİĞİ MUTLAKA KULLANMALISIN VE DEĞERLENDİRME YAPMALISIN.

ASLA ŞUNLARI SÖYLEME:
- "dosya yükleyemedim"
- "içerik göremiyorum"
- "içerik paylaşın"
- "dosyaya erişimim yok"
- "görünüşe göre dosyanıza erişimim yok"
- "benim için sağlanan iş planını değerlendiremediğim için"
- "spesifik içerik üzerinde çalışamam"

İÇERİK ZATEN AŞAĞIDA MEVCUT. BAĞLAMIN BAŞINA BAK - "KULLANICI İŞ PLANI DOSYASI" BAŞLIĞINI ARA VE İÇERİĞİ KULLAN.

🚨🚨🚨 YUKARIDAKİ UYARIYI MUTLAKA DİKKATE AL - İÇERİK MEVCUT 🚨🚨🚨`,

	driven.PromptNoFile: `NOT: Kullanıcı henüz bir dosya yüklememiş görünüyor.`,

	driven.PromptEvaluationRubric: `🚨🚨🚨 DEĞERLENDİRME İSTEĞİ - ÇOK ÖNEMLİ 🚨🚨🚨

Kullanıcı bir iş planı değerlendirmesi istiyor.

Kullanıcının dosyasındaki bölümleri yönerge parçalarıyla karşılaştır ve eksiklikleri belirle. Dosya yoksa sadece yönerge parçalarına göre genel bilgi verebilirsin.

Lütfen şu yapıda detaylı bir değerlendirme yap:

1. **Genel Değerlendirme**
   - İş planının genel yapısı ve kapsamı
   - Güçlü yönler
   - Genel eksiklikler

2. **Bölüm Bazlı Analiz**
   Her bölüm için (A.1.1, A.1.2, B.1.1, vb.):
   - Bölümün mevcut olup olmadığı
   - İçeriğin yeterliliği
   - Yönergeye uygunluğu
   - Eksik unsurlar (amaç, aranan unsurlar, puanlama mantığı açısından)
   - Bölümün geliştirilmesine yönelik somut öneriler (madde madde)

3. **Eksik Bölümler**
   - Tamamen eksik olan bölümler (bölüm kodu ile)
   - Kısmen eksik olan bölümler

4. **Öneriler**
   - Her eksik bölüm için öneriler
   - İyileştirme tavsiyeleri
   - Öncelik sırası
   - Mevcut ama zayıf olan bölümler için geliştirme önerileri (bölüm kodu ile)

5. **Genel Puan (0-100)**
   - İş planını 100 üzerinden puanla
   - Puanın kısa gerekçesini (2-4 madde) belirt
   - Raporun EN SONUNA tek satır olarak **Genel Puan: XX/100** ekle (XX 0-100 arası tam sayı)

Yönerge parçalarındaki her bölüm için (A.1.1, A.1.2, B.1.1, vb.):
- Bölüm başlığını kontrol et
- Amaç kısmının olup olmadığını kontrol et
- Aranan unsurların belirtilip belirtilmediğini kontrol et
- Puanlama mantığının açıklanıp açıklanmadığını kontrol et

Lütfen detaylı, yapılandırılmış ve ölçülebilir bir değerlendirme raporu hazırla.`,

	driven.PromptAnswerInstructions: `Kullanıcının sorusunu yanıtlarken yukarıdaki bağlama dayan. Eğer soru yönerge kapsamında değilse, bunu nazikçe belirt.`,

	driven.PromptSectionEvaluation: `İş planını yönerge parçalarına göre detaylı olarak değerlendir ve eksik yönlerini belirle.
⚠️ Bu istekte SADECE "%[1]s" (%[2]s) ana bölümünü değerlendir:
 - Kapsam: %[2]s.* (%[3]s)
- Diğer ana bölümlere girmeden, sadece bu bölümün kalitesi/eksikleri/iyileştirmeleri üzerine odaklan.

Lütfen şu başlıklar altında değerlendirme yap:

1. **Genel Değerlendirme**
- %[1]s bölümünün genel yapısı ve kapsamı
- Güçlü yönler
- Genel eksiklikler

2. **Bölüm Bazlı Analiz**
İlgili alt bölüm kodları için (%[3]s):
- Bölümün mevcut olup olmadığı
- İçeriğin yeterliliği
- Yönergeye uygunluğu
- Eksik unsurlar
- Bölümün geliştirilmesine yönelik somut öneriler (madde madde)

3. **Eksik Bölümler**
- Tamamen eksik olan alt bölümler (bölüm kodu ile)
- Kısmen eksik olan alt bölümler (bölüm kodu ile)

4. **Öneriler**
- Her eksik/eksik kalan alt bölüm için öneriler (bölüm kodu ile)
- İyileştirme tavsiyeleri
- Öncelik sırası (en kritik 5 aksiyon)
- Mevcut ama zayıf olan bölümler için geliştirme önerileri (bölüm kodu ile)

Lütfen detaylı ve yapılandırılmış bir değerlendirme raporu hazırla.`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.plancheck/prompts/.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".plancheck", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the template for name: the cached copy, the file on disk,
// or the embedded default, in that order.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	if err != nil || prompt == "" {
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		if err == nil {
			err = fmt.Errorf("file is empty")
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory, default files and a README.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	content := `# plancheck prompts

These files hold the prompt templates plancheck sends to the language model.

## Files

- ` + "`system_base.txt`" + ` - opening of every system prompt
- ` + "`guardrails.txt`" + ` - added when the user has uploaded a business plan
- ` + "`no_file.txt`" + ` - added when no business plan was uploaded
- ` + "`evaluation_rubric.txt`" + ` - closes evaluation prompts; must ask for "Genel Puan: XX/100"
- ` + "`answer_instructions.txt`" + ` - closes question-answering prompts
- ` + "`section_evaluation.txt`" + ` - user message for ` + "`plancheck evaluate <A-F>`" + `

## Placeholders

` + "`section_evaluation.txt`" + ` uses Go fmt indexed verbs:
- ` + "`%[1]s`" + ` - section title
- ` + "`%[2]s`" + ` - section letter
- ` + "`%[3]s`" + ` - comma-separated sub-section list

Delete a file to restore its default. Edits are picked up by the next
command, or immediately by ` + "`plancheck mcp serve`" + ` and ` + "`plancheck tui`" + `.
`
	return os.WriteFile(path, []byte(content), 0600)
}
