// Package partnerclient provides the primary entry point for constructing a
// Partner Center API client that implements the partner.Client interface.
//
// It layers configuration, HTTP transport, and authentication on top of the
// resource interfaces and types defined in the partner package. Most
// applications should import partnerclient to build a client, then use the
// returned partner.Client to access resource-specific clients, for example
// Customers(), Subscriptions() or Invoices().
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/partnercenter/pkg/partnerclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // With an access token you already have:
//	  cli, err := partnerclient.NewWithToken(ctx, "https://api.partnercenter.microsoft.com", "eyJhbGciOi...")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with an app registration; tokens are fetched and renewed as needed:
//	  cli, err = partnerclient.NewWithClientCredentials(ctx,
//	    "https://api.partnercenter.microsoft.com",
//	    "https://login.microsoftonline.com/<tenant>/oauth2/v2.0/token",
//	    "client-id", "client-secret")
//	  if err != nil { log.Fatal(err) }
//
//	  customers, err := cli.Customers().List(ctx, 50)
//	  if err != nil { log.Fatal(err) }
//	  _ = customers
//	}
//
// Resources without a typed client are reachable through the generic helpers
// Get, Head, ListOffset and ListSeek:
//
//	type Order struct {
//	  ID string `json:"id"`
//	}
//
//	orders, err := partnerclient.ListOffset[Order](ctx, cli, "/v1/customers/<id>/orders", 20, 0, nil)
//	if err != nil { log.Fatal(err) }
//	all, err := orders.All(ctx)
//
// For full control over retries, rate limiting, circuit breaking, metrics and
// tracing, build a partner.Config and call New.
package partnerclient
