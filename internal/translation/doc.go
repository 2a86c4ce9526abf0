// Package translation converts recognized speech into the vocabulary
// language using the OpenAI chat API. Results are kept in an in-memory
// cache so repeated phrases do not trigger another request.
package translation
