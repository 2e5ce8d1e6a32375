// Package services holds the application logic behind the driving ports.
//
// IngestionService segments raw papers into questions and stores both.
// RetrievalContext filters by subject and year, ranks by embedding
// distance, and rebuilds the on-disk index. AnswerService grounds an LLM
// prompt in retrieved questions. CorpusService reports counts and exports
// papers. SettingsService layers environment overrides over the config
// file.
//
// Everything here talks to storage, embeddings and models through the
// driven ports only.
package services
