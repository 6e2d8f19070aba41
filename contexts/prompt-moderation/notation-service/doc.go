// Package notationservice computes the aggregate rating figure for active
// prompts. Ratings from the creator's group weigh 0.6, others 0.4, and the
// weighted sum is divided by the raw note count. The service is read-only;
// note creation lives outside this context.
package notationservice
