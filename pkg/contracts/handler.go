package contracts

import "github.com/julienschmidt/httprouter"

// Handler is implemented by each service's HTTP layer; the application
// mounts it behind the shared middleware chain.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
