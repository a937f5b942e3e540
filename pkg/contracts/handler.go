package contracts

import "github.com/julienschmidt/httprouter"

// Handler is implemented by every domain handler so the application can
// mount halls, bookings, requests and time slots on one router.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
