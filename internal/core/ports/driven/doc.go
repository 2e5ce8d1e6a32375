// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentStore: Raw document and question persistence (SQLite, Postgres, memory)
//   - Segmenter: Splits cleaned text into candidate question blocks
//   - FieldExtractor: Turns a candidate block into a typed Question
//   - EmbeddingService: Maps text to fixed-length vectors
//   - VectorIndex / VectorIndexFactory: Flat nearest-neighbour search
//   - IndexArtifactStore: Paired index + id-map persistence with generation swaps
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - LLMService: Answer generation. Without it, only retrieval is available.
//   - Normaliser: Converts input files into raw documents.
//   - DocumentArchive: Writes raw documents out grouped by year.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
