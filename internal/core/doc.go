// Package core provides the business logic for the sales pre-processor.
//
// The package turns a JSON array of e-commerce orders into flat sales rows,
// one per usable line item. It has no transport dependencies and can be used
// by web handlers, CLI tools, or tests without modification.
//
// # Architecture
//
// The pipeline is built from small interfaces so each step can be replaced
// in tests:
//
//   - [Validator]: ordered order-level rules, first failure wins
//   - [AddressFormatter]: billing, shipping and customer address lines
//   - [DateParser]: exact layouts, then a loose parse, then the clock
//   - [Transformer]: validates one order and builds its rows
//   - [RecordSource]: forward-only iterator over decoded orders
//   - [StreamProcessor]: drives a Transformer over a RecordSource
//
// # Streaming
//
// Requests are processed with memory bounded by the largest single order,
// regardless of body size. The flow is:
//
//  1. The body is wrapped by [WrapForDecoding] (byte counting, BOM removal,
//     trailing-comma removal)
//  2. [RecordDecoder] reads the array one element at a time
//  3. [StreamProcessor.Process] transforms each order and accumulates a
//     [BatchResult]
//
// A malformed body aborts the batch with a [*DecodeError]. Validation failures
// do not: they are collected in BatchResult.Errors and processing continues.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages using [MapError]:
//
//   - JSON001-JSON002: malformed input
//   - REQ001-REQ003: request size, cancellation, timeout
//   - BUSY001: too many concurrent batches (see [BatchLimiter])
package core
