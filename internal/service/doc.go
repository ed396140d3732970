// Package service holds the domain facades (Clientes, Productos, Usuarios,
// Auth) that sit between the UI and the HTTP executor.
//
// Every facade follows the same rules:
//   - Writes are validated locally first; an invalid record never reaches
//     the executor and comes back as a failed SubmissionResult.
//   - Collection replies are normalized once into api.Paginated[T], whatever
//     envelope the server used.
//   - Field-name variants are resolved by the adapters in fields.go, so the
//     mapped record always exposes one canonical field.
//   - Executor errors are reclassified into user-facing Spanish copy while
//     keeping their api.Kind, so callers can still branch on the kind.
package service
