/*
Package authsdk is a Go client for the kelas identity service.

# SDKClient vs Session

SDKClient calls the public endpoints: registration, login, token refresh,
health and JWKS. Registration and login return a Session, which carries the
token pair and calls the endpoints that need a bearer token.

	client := authsdk.NewSDKClient("http://localhost:8080")

	_, session, err := client.Login(ctx, "alice", "Str0ngP@ss!")
	if err != nil {
		return err
	}

	profile, err := session.Profile(ctx)

A Session refreshes its access token 30 seconds before it expires. Refresh
tokens rotate, so after a refresh the previous refresh token is revoked and
only Session.Tokens holds a usable one.

# Errors

Every non-success response is returned as an *APIError. Validation failures
carry per field messages in Fields; other failures carry Message.

	_, _, err := client.Register(ctx, req)
	if apiErr, ok := authsdk.AsAPIError(err); ok {
		fmt.Println(apiErr.Field("password2"))
	}

Failed logins report a single message under NonFieldErrors, whether the
username exists or not.
*/
package authsdk
