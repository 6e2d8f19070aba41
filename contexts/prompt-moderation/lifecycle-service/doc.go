// Package lifecycleservice implements the prompt Status Transition Authority
// inside the prompt-moderation context.
//
// The module owns prompt creation and every role-gated status write, serves
// the catalog/moderation read surfaces, and emits lifecycle events through an
// outbox-backed relay. Business rules live in domain/application layers with
// infrastructure isolated behind ports and adapters.
package lifecycleservice
