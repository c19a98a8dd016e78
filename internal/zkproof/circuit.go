package zkproof

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	mimcNative "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// DigestCircuit proves knowledge of the field element behind a published
// MiMC hash. The prover derives PreImage from the document digest; only
// Hash is public.
type DigestCircuit struct {
	PreImage frontend.Variable
	Hash     frontend.Variable `gnark:",public"`
}

// Define enforces Hash == MiMC(PreImage).
func (c *DigestCircuit) Define(api frontend.API) error {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	h.Write(c.PreImage)
	api.AssertIsEqual(c.Hash, h.Sum())
	return nil
}

// preImageFromDigest maps a SHA-256 digest into the BN254 scalar field.
func preImageFromDigest(digest []byte) *big.Int {
	x := new(big.Int).SetBytes(digest)
	return x.Mod(x, fr.Modulus())
}

// mimcHash computes the native MiMC hash matching the in-circuit gadget.
func mimcHash(x *big.Int) *big.Int {
	var e fr.Element
	e.SetBigInt(x)
	b := e.Bytes()

	h := mimcNative.NewMiMC()
	h.Write(b[:])
	return new(big.Int).SetBytes(h.Sum(nil))
}
