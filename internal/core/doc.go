// # Architecture
//
// The package holds everything between the HTTP layer and the transfer
// controller:
//
//   - Table Definitions: loaded from a YAML schema file ([LoadSchemaFile])
//     into the registry, reloaded on change by [SchemaWatcher].
//   - Row Stores: [RowStore] keeps rows as JSON documents, in memory
//     ([MemoryStore]) or in PostgreSQL ([PgStore]).
//   - Service: [Service.Transfer] runs one copy, cut or paste through a
//     fresh transfer.Controller. [Service.Cell] resolves a cell for display.
//   - Audit: every transfer outcome is recorded by [AuditService].
//
// # Table Registry
//
// Tables are keyed by their Info.Key. The schema watcher swaps the whole
// registry at once with [ReplaceAll]; tests may use [Register] and [Clear]:
//
//	core.Register(TableDefinition{
//	    Info: TableInfo{Key: "contacts", Group: "CRM", Label: "Contacts"},
//	    Columns: []fields.ColumnConfig{
//	        {Key: "email", FieldName: "email", Type: fields.Email},
//	        {Key: "score", FieldName: "stats.score", Type: fields.Rating,
//	            Config: map[string]any{"max": 10}},
//	    },
//	})
//
// # Transfers
//
// A transfer acquires a [TransferLimiter] slot, loads the table's rows,
// resolves the selection and runs the operation with a per-request
// clipboard. Notifications the controller reports are returned in
// [TransferResult.Messages].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - CLIP001-CLIP006: Clipboard and field capability errors
//   - VAL001-VAL003: Schema value errors
//   - TBL001-TBL003: Table errors
//   - ROW001: Row errors
//   - XFER001-XFER003: Throttling, cancellation and timeouts
//
// # Audit Logging
//
// Transfers are audited with severity levels:
//
//   - Low: Copies and every rejected transfer
//   - Medium: Pastes
//   - High: Cuts that went through
package core
