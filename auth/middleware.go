package auth

import (
	"strings"

	"collaborative-whiteboard/internal/errors"

	"github.com/gin-gonic/gin"
)

// AuthMiddleWare verifies the bearer token and puts the participant on the
// context. Websocket upgrades can't set headers, so a token query parameter
// is accepted as a fallback.
func AuthMiddleWare() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		var token string

		if authHeader != "" {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		} else if q := ctx.Query("token"); q != "" {
			token = q
		} else {
			ctx.Error(errors.Unauthorized("Authorization is not found!", nil))
			ctx.Abort()
			return
		}

		parsedToken, err := VerifyJWT(token)
		if err != nil {
			ctx.Error(errors.Unauthorized("Invalid token!", err))
			ctx.Abort()
			return
		}

		participant, err := ParticipantFromToken(parsedToken)
		if err != nil {
			ctx.Error(errors.Unauthorized("Invalid token!", err))
			ctx.Abort()
			return
		}

		ctx.Set("participant_id", participant.ID)
		ctx.Set("participant_name", participant.Name)
		ctx.Next()
	}
}
