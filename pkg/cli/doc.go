// Package cli provides the posgate command-line interface for session and
// authorization management.
//
// # Overview
//
// This package implements the `posgate` CLI tool for operators to log in
// against the user service, inspect the current session, check permissions,
// and drive the POS sales and inventory endpoints from the terminal.
//
// # Commands
//
// login: Authenticate and persist the session
//
//	posgate login --username manager
//
// logout: Drop the session and persisted credentials
//
//	posgate logout
//
// whoami: Show the current identity and effective permissions
//
//	posgate whoami
//
// check: Check permissions for the current session
//
//	posgate check create_sale read_sale
//	posgate check --mode all create_sale delete_sale
//
// refresh: Refetch effective permissions from the authority
//
//	posgate refresh
//
// roles: List roles, from the authority or the built-in policy
//
//	posgate roles
//	posgate roles --local
//
// users: Manage user accounts
//
//	posgate users list --limit 20
//	posgate users create --username clerk --password pw --role cashier
//	posgate users update --id 7 --role manager
//	posgate users delete --id 7
//
// sale: Submit a sale, items given as productID:quantity:unitPrice
//
//	posgate sale --branch 1 --payment cash --discount 1.50 3:2:4.25 9:1:2.00
//
// inventory: Manage the product catalog
//
//	posgate inventory list
//	posgate inventory add --name Coffee --sku SKU-1 --price 3.50 --stock 100
//	posgate inventory delete --id 4
//
// # Configuration
//
// Backend endpoints:
//
//	export POSGATE_USER_SERVICE_URL="http://localhost:8000"
//	export POSGATE_POS_SERVICE_URL="http://localhost:8001"
//
// # Degraded Mode
//
// When the authority is unreachable, permission checks fall back to the
// built-in role policy and commands print a warning. Cached fallback answers
// expire quickly so the authority is retried.
//
// # Related Packages
//
//   - pkg/client: Makes HTTP calls to the backend services
//   - pkg/session: Owns the persisted session
//   - pkg/rbac: Resolves permission checks
package cli
