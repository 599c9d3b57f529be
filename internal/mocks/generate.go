// Package mocks provides gomock implementations of the ports used by the path explorer services.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	backend := mocks.NewMockBackendAPI(ctrl)
//	backend.EXPECT().Profile(gomock.Any(), "token").Return(user, nil)
package mocks

// Generate mock for BackendAPI interface from internal/ports package.
// Login, Profile, Users, Skills, Certifications, Projects
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=backend_api_mock.go github.com/zephir/path-explorer/internal/ports BackendAPI

// Generate mock for Cache interface from internal/ports package.
// Get, Set, DeletePrefix
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cache_mock.go github.com/zephir/path-explorer/internal/ports Cache

// Generate mock for TokenDecoder interface from internal/ports package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=token_decoder_mock.go github.com/zephir/path-explorer/internal/ports TokenDecoder
