/*
Package ports defines the interfaces between the calculator core and the
infrastructure that hosts it.

  - Engine: the stateless calculator core as seen by adapters.
  - SessionStore: keeps calculator states for hosts that serve many sessions.
  - DistributedLocker: serializes access to a session across replicas.

RunSessionStoreContract is a reusable test suite every SessionStore
implementation should pass.
*/
package ports
