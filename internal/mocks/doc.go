// Package mocks provides shared test doubles for the store, auth and
// generation interfaces.
//
// The store mocks are backed by a MemoryDB so that, for example, deleting a
// deck removes its cards and a card listing sees notes created through the
// note store. Any method can be made to fail through the store's Fail
// method, and the user store, JWT service and generator also accept function
// fields for finer control:
//
//	stores := mocks.NewStores()
//	stores.Cards.Fail("Create", errors.New("disk full"))
//
//	jwtService := &mocks.MockJWTService{
//	    GenerateTokenFn: func(ctx context.Context, id uuid.UUID) (string, error) {
//	        return "token", nil
//	    },
//	}
package mocks
