/*
Package gatesdk is a Go client for the invitegate HTTP API.

	client := gatesdk.NewClient("https://gate.example.com")

	ok, err := client.VerifyCode(ctx, "ABCD1234")

	id, err := client.Reserve(ctx, gatesdk.ReserveRequest{
		Code:          "ABCD1234",
		Email:         "alice@example.com",
		WalletAddress: "0x...",
		Signature:     sig, // personal_sign over "Register with invite code: ABCD1234"
	})

Failed calls return an *APIError carrying the HTTP status and the error code
from the response body. Use IsCode to branch on a specific code:

	if gatesdk.IsCode(err, gatesdk.ErrorCodeCodeExhausted) {
		// the invite has no uses left
	}

Creating invite codes may require a creator bearer token; set Client.Token.
*/
package gatesdk
