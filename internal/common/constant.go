package common

// AccessTokenHeaderName is the gRPC metadata key that may carry a raw
// access token when the authorization header is not used.
const AccessTokenHeaderName = "access_token"

// AuthorizationHeaderName is the gRPC metadata / HTTP header key carrying
// "Bearer <token>".
const AuthorizationHeaderName = "authorization"

// TokenTypeBearer is the only token type issued by the server.
const TokenTypeBearer = "bearer"
