package games

// One room, one prompt at a time
// Each player joins from their browser, is assigned a cookie, and submits a display name plus a free-text answer to the current prompt
// The moderator (on /game) locks submissions when everyone is in, which also reveals the answers
// Players take turns guessing who wrote which answer; the moderator tracks whose turn it is with /next
// Knocking out a player or an answer gives the current-turn player a point
// /clear starts the next round: everyone back in, answers wiped, scores kept

// Display formats:
// Join page: two text fields (name, answer) plus the current prompt
// Game page: player table sorted by (in-play, score), answer list sorted alphabetically once revealed

// Implementation details:
// - Identify players by cookie on first contact; the record survives renames and round resets
// - Name submission assigns the next turn slot, so turn order is join order
// - Counts stream to all pages once per second; the host view can also take a websocket snapshot feed
