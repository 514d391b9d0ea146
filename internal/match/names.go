package match

import (
	"strconv"
	"strings"
)

// Participant roles.
const (
	RoleServer = "server"
	RoleClient = "client"
)

// Every engine resource name embeds the session token so concurrent sessions
// on one host cannot collide.

func networkName(token string) string {
	return "arena_net_" + token
}

func serverImageTag(token string) string {
	return "arena_server_image_" + token
}

func clientImageTag(id, token string) string {
	return "arena_client_image_" + strings.ToLower(id) + "_" + token
}

func serverContainerName(token string) string {
	return "arena_server_" + token
}

func clientContainerName(index int, token string) string {
	return "arena_client_" + strconv.Itoa(index) + "_" + token
}
