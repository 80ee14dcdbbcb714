// Package partner provides types, interfaces, and helpers for working with the
// Partner Center REST API.
//
// # Overview
//
// The partner package defines the domain types (Customer, Subscription,
// Invoice), the interfaces of the resource clients (CustomersClient,
// SubscriptionsClient, InvoicesClient) and the building blocks every call goes
// through: Credentials, RetryPolicy, RequestContext, PartnerError and
// PageEnumerator. A concrete client is provided by the partnerclient package,
// which wires configuration, transport, retries and authentication.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//	  "time"
//
//	  "github.com/fivetwenty-io/partnercenter/pkg/partner"
//	  "github.com/fivetwenty-io/partnercenter/pkg/partnerclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := partnerclient.New(ctx, &partner.Config{
//	    AccessToken:    token,
//	    TokenExpiresAt: time.Now().Add(time.Hour),
//	    RetryPolicy:    partner.ExponentialBackOff(3),
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  customer, err := cli.Customers().Get(ctx, "4a1f3c5e-...")
//	  if err != nil { log.Fatal(err) }
//	  _ = customer
//	}
//
// # Credentials
//
// Credentials carry the bearer token and a chain of RefreshFunc handlers. When
// a call finds the token expired (ExpiresAt minus the expiry buffer has passed)
// the chain runs once, shared by every concurrent call, and the call proceeds
// only if the token is valid afterwards. Otherwise it fails with an
// Unauthorized PartnerError without contacting the service.
//
// # Retries
//
// Failed attempts are retried according to a RetryPolicy. Linear waits a fixed
// interval; ExponentialBackOff waits (2^n - 1) * 0.5s. Responses with status
// 400, 401, 403, 404 and 409 are final, everything else is retried until the
// policy gives up.
//
// # Pagination
//
// List operations return a PageEnumerator positioned on the first page:
//
//	pages, err := cli.Invoices().List(ctx, 50, 0, nil)
//	if err != nil { /* handle error */ }
//	for pages.HasValue() {
//	  for _, invoice := range pages.Current().Items { _ = invoice }
//	  if err := pages.Next(ctx); err != nil { break }
//	}
//
// Offset based collections use size and offset query parameters. Seek based
// collections (customers) follow the MS-ContinuationToken header.
//
// # Errors
//
// Every failed call returns a *PartnerError carrying an ErrorCategory, the
// service's ApiFault payload when there is one, and the RequestContext of the
// call. Helpers such as IsNotFound, IsUnauthorized and IsForbidden branch on
// the category.
package partner
