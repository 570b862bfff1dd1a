// SPDX-License-Identifier: EPL-2.0

// Package codec implements the decode and encode stages.
//
// Both stages are push/pull state machines. A Decoder accepts packets with
// SendPacket and hands out frames with ReceiveFrame; an Encoder accepts
// frames with SendFrame and hands out packets with ReceivePacket. SendEOF
// switches either stage into draining mode, after which the receive call is
// repeated until it reports false.
//
// Configure decides the encoder parameters from the codec's capabilities
// and the decoded input.
package codec
