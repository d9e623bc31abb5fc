/*
Package cqc implements classical-quantum circuits for quantum homomorphic encryption.
It provides a pure Go implementation of the EPR-based QHE scheme, in which a client
Pauli-encrypts its qubits and a server evaluates a Clifford+T circuit blindly, consuming
one Bell pair per T gate and tracking the encryption keys in classical registers of the
circuit itself. The module covers circuit construction and serialization, compilation to
the Clifford+T gate set backed by the gridsynth rotation synthesizer, a dense statevector
simulator with mid-circuit measurements and classically conditioned gates, and coined
quantum walks on cycle graphs as a worked application.
*/
package cqc
