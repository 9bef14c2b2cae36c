package domain

const unknownDescription = "Unknown"

// AIProvider identifies a backend for embeddings or answer generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API, or any OpenAI-compatible
	// endpoint (Groq, vLLM, Together) reached via a base URL override.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGroq is Groq's OpenAI-compatible cloud API.
	AIProviderGroq AIProvider = "groq"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderGroq, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderGroq || p == AIProviderAnthropic
}

// SupportsEmbeddings returns true if this provider can serve as the
// system embedding backend.
func (p AIProvider) SupportsEmbeddings() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderGroq:
		return "Groq (cloud, OpenAI-compatible)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// StorageBackend identifies a vector store implementation.
type StorageBackend string

// Available storage backends.
const (
	// StorageSQLite keeps documents, chunks and vectors in a local SQLite
	// database with a brute-force similarity scan.
	StorageSQLite StorageBackend = "sqlite"

	// StorageQdrant keeps chunks and vectors in a Qdrant instance over gRPC.
	StorageQdrant StorageBackend = "qdrant"

	// StorageMemory keeps everything in process memory. Development and
	// tests only.
	StorageMemory StorageBackend = "memory"
)

// IsValid returns true if the storage backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageSQLite, StorageQdrant, StorageMemory:
		return true
	default:
		return false
	}
}

// EmbeddingSettings configures the single system-wide embedding provider.
// Embedding provider identity is fixed per deployment because stored vector
// dimensionality must stay constant across the whole corpus.
type EmbeddingSettings struct {
	// Provider is the embedding backend.
	Provider AIProvider

	// BaseURL overrides the provider's default endpoint.
	BaseURL string

	// APIKey authenticates cloud providers.
	APIKey string

	// Model is the embedding model name.
	Model string

	// TimeoutSeconds bounds each outbound request. Zero uses the adapter
	// default.
	TimeoutSeconds int

	// Dimensions overrides the model's default vector size, where supported.
	Dimensions int

	// RequestsPerSecond caps outbound embedding calls. Zero disables the cap.
	RequestsPerSecond float64
}

// IsConfigured returns true when the settings name a usable provider.
func (s *EmbeddingSettings) IsConfigured() bool {
	if s == nil || !s.Provider.IsValid() || !s.Provider.SupportsEmbeddings() {
		return false
	}
	if s.Provider.RequiresAPIKey() && s.APIKey == "" {
		return false
	}
	return true
}

// GenerationSettings configures one named generation provider.
type GenerationSettings struct {
	// Provider is the generation backend.
	Provider AIProvider

	// BaseURL overrides the provider's default endpoint.
	BaseURL string

	// APIKey authenticates cloud providers.
	APIKey string

	// Model is the generation model name.
	Model string

	// TimeoutSeconds bounds each outbound request. Zero uses the adapter
	// default.
	TimeoutSeconds int

	// MaxTokens caps the generated answer length. Zero uses the adapter
	// default.
	MaxTokens int

	// Temperature controls sampling randomness.
	Temperature float64
}

// IsConfigured returns true when the settings name a usable provider.
func (s *GenerationSettings) IsConfigured() bool {
	if s == nil || !s.Provider.IsValid() {
		return false
	}
	if s.Provider.RequiresAPIKey() && s.APIKey == "" {
		return false
	}
	return true
}

// StorageSettings configures the vector store.
type StorageSettings struct {
	// Backend selects the store implementation.
	Backend StorageBackend

	// DataDir is where file-backed stores keep their data.
	// Empty uses the adapter default.
	DataDir string

	// QdrantHost is the Qdrant gRPC host.
	QdrantHost string

	// QdrantPort is the Qdrant gRPC port.
	QdrantPort int

	// QdrantCollection is the collection name prefix.
	QdrantCollection string
}

// Settings is the full application configuration, built once at startup.
type Settings struct {
	// Storage configures the vector store.
	Storage StorageSettings

	// Embedding configures the system embedding provider.
	Embedding EmbeddingSettings

	// DefaultGeneration names the generation provider used when a request
	// does not specify one.
	DefaultGeneration string

	// Generation holds the named generation provider configurations.
	// Only entries that are IsConfigured are registered.
	Generation map[string]GenerationSettings

	// TopK is the default number of chunks retrieved per query.
	TopK int

	// MaxChunkSize is the splitter's chunk size in characters.
	MaxChunkSize int
}
