// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - EmbeddingService: Generates vector embeddings for sections, chunks and queries
//   - VectorStore: Named collections of vectors with payloads (Qdrant)
//   - LLMService: Chat completion with token streaming
//   - SectionParser: Splits the rulebook into section records
//   - Chunker: Splits uploaded text into bounded chunks
//   - NormaliserRegistry: Extracts text from uploaded files
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - IdentityDirectory: Registration and score rows. Without it, register/check/score are disabled.
//   - UploadStore: Upload history. Without it, uploads are not recorded.
//   - PromptStore: Custom prompt templates. Without it, built-in prompts are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, parser, or normaliser package
package driven
