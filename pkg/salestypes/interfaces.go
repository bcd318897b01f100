// Package salestypes defines the core data structures and interfaces shared by SalesDesk components.
//
// SalesDesk is a small pipeline: a dataset is loaded once, each user question is
// combined with recent conversation history into a prompt, the prompt is sent to a
// hosted LLM, and the cleaned reply is appended to a bounded conversation history.
//
// # Package Organization
//
// ## Session and Conversation Types (session_types.go)
//
//   - Role: Speaker of a conversation entry (user or assistant)
//   - Message: One immutable entry of the conversation history
//   - Dataset: The vehicle data text loaded at startup
//
// ## LLM Types (llm_types.go)
//
//   - GenerationConfig: Sampling parameters applied to every request
//   - InferenceClient: Provider adapter performing one generation call
//   - ClientFactory: Creation and caching of provider adapters
package salestypes
