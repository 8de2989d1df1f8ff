// Package clustercache is a typed client facade over a remote key/value
// cache cluster. It adds no wire protocol of its own: a driver.Driver
// supplies the connection, the endpoint list and byte-level primitives.
//
// Components:
//   - Client: keyed operations, pub/sub, and fan-out commands
//     (SearchKeys, FlushDb, Save, GetInfo).
//   - Typed[V]: the value-carrying half of the API, bound to a codec.Codec[V].
//   - topology.Policy: which known endpoints SearchKeys visits.
//   - codec: JSON, MessagePack, CBOR, protobuf, raw bytes, and a
//     polymorphic envelope for interface-typed values.
//   - provider: optional near-cache consulted before the remote Get.
//   - Factory / GetClient: one process-wide Client built from config.
//
// Keys:
//
//	<KeyPrefix><key>  - prefix applied once on the way in, stripped from SearchKeys
//
// Usage:
//
//	c, _ := clustercache.New(clustercache.Options{Driver: drv, KeyPrefix: "app:"})
//	users := clustercache.Of[User](c)
//	_, _ = users.SetWithExpiry(ctx, "u:1", u, clustercache.ExpireIn(time.Minute))
//	u, err := users.Get(ctx, "u:1") // zero User and nil error when missing
package clustercache
