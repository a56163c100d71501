// Package protocol implements parsing and serialising of the payloads that
// litecache uses to communicate with its clients.
//
// The protocol is a small subset of the Redis protocol (RESP): clients only
// ever send arrays of bulk strings, and the server only ever answers with a
// single simple string or error line.
//
// - `Message` - The raw text of one client request.
// - `Token`   - One `\r\n` delimited piece of a message.
// - `Command` - A typed client instruction, built from the tokens of a message.
// - `Reply`   - The single line the server writes back for a message.
//
// === Requests
//
//   ```
//     *<N>\r\n
//     $<len1>\r\n<token1>\r\n
//     ...
//     $<lenN>\r\n<tokenN>\r\n
//   ```
//
// `N` is the number of elements, the command verb included. Every `$<len>`
// must equal the byte length of the token that follows it.
//
// - lines are `\r\n` delimited
// - command verbs are case insensitive
// - one message holds exactly one command, pipelining is not supported
// - values cannot contain `\r\n`
//
// === Replies
//
//   ```
//     +<payload>\r\n
//     -<message>\r\n
//   ```
//
// A `_\r\n` null reply is reserved but not currently sent by any command.
//
// === PING
//
//  ```
//    > *1\r\n$4\r\nPING\r\n
//    < +PONG\r\n
//  ```
//
// === ECHO
//
//  ```
//    > *2\r\n$4\r\nECHO\r\n$5\r\nhello\r\n
//    < +hello\r\n
//  ```
//
// === SET
//
//  ```
//    > *3\r\n$3\r\nSET\r\n$3\r\nkey\r\n$5\r\nvalue\r\n
//    < +OK\r\n
//  ```
//
// Trailing `NX` or `XX` elements are accepted and recorded on the parsed
// command, but the store does not act on them.
//
// === GET
//
//  ```
//    > *2\r\n$3\r\nGET\r\n$3\r\nkey\r\n
//    < +value\r\n
//  ```
//
// Or, if the key was never set
//
//  ```
//    < -Error Key not found: key\r\n
//  ```
//
// === COMMAND
//
// Sent by redis-cli when it connects. Always answers `+OK\r\n`.
//
package protocol
