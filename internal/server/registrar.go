package server

import "google.golang.org/grpc"

// Registrar attaches one API to the gRPC server.
type Registrar interface {
	Register(s grpc.ServiceRegistrar)
}
