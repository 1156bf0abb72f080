// Package infra holds the adapters behind the core interfaces: the be-svitlo
// schedule client, the svitlobot publisher, week record backends, mirrors and
// metrics exporters. Core packages never import infra.
package infra
