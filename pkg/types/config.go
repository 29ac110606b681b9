package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "thesis-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries on throttling responses (429, 503).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// ScrapeConfig holds settings for the external academic search scraper.
type ScrapeConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the search endpoint (default http://ci.nii.ac.jp/search).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Count is the number of result items requested per page (default 100).
	Count int `json:"count" yaml:"count" mapstructure:"count"`

	// Range, SortOrder and Type are passed through as the range, sortorder
	// and type query parameters.
	Range     int `json:"range" yaml:"range" mapstructure:"range"`
	SortOrder int `json:"sort_order" yaml:"sort_order" mapstructure:"sort_order"`
	Type      int `json:"type" yaml:"type" mapstructure:"type"`

	// MaxBodyBytes caps how much of a result page is read.
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" mapstructure:"max_body_bytes"`

	// InterQueryDelay is the pause between queries of a batch run.
	InterQueryDelay time.Duration `json:"inter_query_delay" yaml:"inter_query_delay" mapstructure:"inter_query_delay"`

	// Selectors is the result page selector contract.
	Selectors SelectorContract `json:"selectors" yaml:"selectors" mapstructure:"selectors"`
}

// SummarizerEngine selects the summarization backend.
type SummarizerEngine string

const (
	EngineProcess SummarizerEngine = "process"
	EngineLuhn    SummarizerEngine = "luhn"
)

// NLPConfig holds settings for segmentation and summarization.
type NLPConfig struct {
	// MecabBin is the MeCab executable (default "mecab").
	MecabBin string `json:"mecab_bin" yaml:"mecab_bin" mapstructure:"mecab_bin"`

	// MecabConfigBin is used to resolve the dictionary root when
	// DictionaryDir is empty (default "mecab-config").
	MecabConfigBin string `json:"mecab_config_bin" yaml:"mecab_config_bin" mapstructure:"mecab_config_bin"`

	// DictionaryName is appended to the mecab-config dicdir (default
	// "mecab-ipadic-neologd").
	DictionaryName string `json:"dictionary_name" yaml:"dictionary_name" mapstructure:"dictionary_name"`

	// DictionaryDir overrides dictionary resolution when set.
	DictionaryDir string `json:"dictionary_dir,omitempty" yaml:"dictionary_dir,omitempty" mapstructure:"dictionary_dir"`

	// SegmenterFallback degrades to whitespace segmentation when MeCab is
	// unavailable instead of failing the item.
	SegmenterFallback bool `json:"segmenter_fallback" yaml:"segmenter_fallback" mapstructure:"segmenter_fallback"`

	// Engine selects the summarizer: process or luhn.
	Engine SummarizerEngine `json:"engine" yaml:"engine" mapstructure:"engine"`

	// Python and SummarizerScript form the summarization command line of
	// the process engine. The script is required for that engine.
	Python           string `json:"python" yaml:"python" mapstructure:"python"`
	SummarizerScript string `json:"summarizer_script" yaml:"summarizer_script" mapstructure:"summarizer_script"`

	// WordBudget caps the segmented tokens handed to the summarizer (default 60000).
	WordBudget int `json:"word_budget" yaml:"word_budget" mapstructure:"word_budget"`

	// Timeout bounds a single summarization call.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// CorpusConfig holds settings for the thesis corpus store.
type CorpusConfig struct {
	// DataDir is the directory holding the SQLite database.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// PageSize is the default listing page size (default 4).
	PageSize int `json:"page_size" yaml:"page_size" mapstructure:"page_size"`

	// PopularCount is the number of most-accessed theses listed (default 5).
	PopularCount int `json:"popular_count" yaml:"popular_count" mapstructure:"popular_count"`
}

// FeaturesConfig holds settings for lab feature vectors and their rebuild.
type FeaturesConfig struct {
	// StoreDir is the badger directory for feature vectors.
	StoreDir string `json:"store_dir" yaml:"store_dir" mapstructure:"store_dir"`

	// Dimension is the fixed feature vector length (default 512).
	Dimension int `json:"dimension" yaml:"dimension" mapstructure:"dimension"`

	// Workers is the rebuild worker pool size (default NumCPU/2, min 1).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// ItemTimeout bounds the summarization of one thesis during rebuild.
	ItemTimeout time.Duration `json:"item_timeout" yaml:"item_timeout" mapstructure:"item_timeout"`

	// MaxAttempts is the number of tries per thesis, halving the word
	// budget after each failure (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts"`
}

// LabEntry configures one lab and the path patterns that identify its files.
type LabEntry struct {
	ID       int64    `json:"id" yaml:"id" mapstructure:"id"`
	Name     string   `json:"name" yaml:"name" mapstructure:"name"`
	Slug     string   `json:"slug" yaml:"slug" mapstructure:"slug"`
	Patterns []string `json:"patterns" yaml:"patterns" mapstructure:"patterns"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is text or json (default text).
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all component configurations.
type Config struct {
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
	Corpus   CorpusConfig   `json:"corpus" yaml:"corpus" mapstructure:"corpus"`
	Scrape   ScrapeConfig   `json:"scrape" yaml:"scrape" mapstructure:"scrape"`
	NLP      NLPConfig      `json:"nlp" yaml:"nlp" mapstructure:"nlp"`
	Features FeaturesConfig `json:"features" yaml:"features" mapstructure:"features"`
	Labs     []LabEntry     `json:"labs" yaml:"labs" mapstructure:"labs"`
}

// DefaultLabs is the lab table of the deployment. Order matters: path
// resolution takes the first matching entry.
func DefaultLabs() []LabEntry {
	return []LabEntry{
		{ID: 2, Name: "Dürst 研究室", Slug: "durst", Patterns: []string{"durst"}},
		{ID: 7, Name: "原田研究室", Slug: "harada", Patterns: []string{"harada"}},
		{ID: 5, Name: "小宮山研究室", Slug: "komiyama", Patterns: []string{"komiyama"}},
		{ID: 8, Name: "lopez 研究室", Slug: "lopez", Patterns: []string{"lopez"}},
		{ID: 4, Name: "大原研究室", Slug: "ohara", Patterns: []string{"ohara"}},
		{ID: 3, Name: "佐久田研究室", Slug: "sakuta", Patterns: []string{"sakuta"}},
		{ID: 1, Name: "鷲見研究室", Slug: "sumi", Patterns: []string{"sumi"}},
		{ID: 6, Name: "戸辺研究室", Slug: "tobe", Patterns: []string{"tobe"}},
	}
}

// DefaultConfig returns the configuration used when no file or environment
// overrides are present.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Corpus: CorpusConfig{
			DataDir:      "data",
			PageSize:     4,
			PopularCount: 5,
		},
		Scrape: ScrapeConfig{
			HTTPConfig: HTTPConfig{
				Timeout:    30 * time.Second,
				UserAgent:  "thesis-engine/0.1",
				MaxRetries: 3,
			},
			BaseURL:         "http://ci.nii.ac.jp/search",
			Count:           100,
			Range:           0,
			SortOrder:       1,
			Type:            0,
			MaxBodyBytes:    8 << 20,
			InterQueryDelay: time.Second,
			Selectors:       CiNiiSelectors,
		},
		NLP: NLPConfig{
			MecabBin:         "mecab",
			MecabConfigBin:   "mecab-config",
			DictionaryName:   "mecab-ipadic-neologd",
			Engine:           EngineLuhn,
			Python:           "python3",
			WordBudget:       60000,
			Timeout:          10 * time.Minute,
		},
		Features: FeaturesConfig{
			StoreDir:    "data/features",
			Dimension:   512,
			ItemTimeout: 10 * time.Minute,
			MaxAttempts: 3,
		},
		Labs: DefaultLabs(),
	}
}
