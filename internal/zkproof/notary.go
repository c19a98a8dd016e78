package zkproof

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"blockvault/internal/domain"
)

const (
	provingKeyFile   = "notary_pk.bin"
	verifyingKeyFile = "notary_vk.bin"
)

// Notary holds the compiled digest circuit and its Groth16 keys.
type Notary struct {
	keyDir string
	ccs    constraint.ConstraintSystem
	pk     groth16.ProvingKey
	vk     groth16.VerifyingKey
}

// NewNotary compiles the digest circuit and loads or generates the Groth16
// key pair under keyDir. Setup runs once; subsequent starts reuse the keys.
func NewNotary(keyDir string) (*Notary, error) {
	var circuit DigestCircuit
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit)
	if err != nil {
		return nil, fmt.Errorf("compile digest circuit: %w", err)
	}
	pk, vk, err := setupOrLoadKeys(ccs, keyDir)
	if err != nil {
		return nil, err
	}
	return &Notary{keyDir: keyDir, ccs: ccs, pk: pk, vk: vk}, nil
}

// HealthCheck reports whether the persisted key pair is still on disk.
func (n *Notary) HealthCheck() error {
	for _, name := range []string{provingKeyFile, verifyingKeyFile} {
		if _, err := os.Stat(filepath.Join(n.keyDir, name)); err != nil {
			return err
		}
	}
	return nil
}

// ProveDigest generates a Groth16 proof bound to a SHA-256 document digest
// and wraps it in the wire envelope.
func (n *Notary) ProveDigest(digest []byte) (domain.Proof, error) {
	pre := preImageFromDigest(digest)
	hash := mimcHash(pre)

	assignment := &DigestCircuit{PreImage: pre, Hash: hash}
	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return domain.Proof{}, fmt.Errorf("witness: %w", err)
	}
	proof, err := groth16.Prove(n.ccs, n.pk, w)
	if err != nil {
		return domain.Proof{}, fmt.Errorf("prove: %w", err)
	}
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return domain.Proof{}, fmt.Errorf("serialize proof: %w", err)
	}

	digestHex := hex.EncodeToString(digest)
	inputs := map[string]string{
		"digest":    digestHex,
		"mimc_hash": hash.Text(16),
	}
	env := Envelope(inputs, []string{hash.Text(16), TruncatedSignal(digestHex)})
	env.Raw = buf.Bytes()
	return env, nil
}

// VerifyDigest checks the envelope invariants and then the Groth16 proof
// against the hash implied by digest.
func (n *Notary) VerifyDigest(p *domain.Proof, digest []byte) error {
	if err := VerifyEnvelope(p); err != nil {
		return err
	}
	if p.CircuitInputs["digest"] != hex.EncodeToString(digest) {
		return fmt.Errorf("proof is bound to a different digest")
	}
	if len(p.Raw) == 0 {
		return fmt.Errorf("missing raw proof bytes")
	}

	hash := mimcHash(preImageFromDigest(digest))
	public := &DigestCircuit{Hash: hash}
	w, err := frontend.NewWitness(public, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("public witness: %w", err)
	}
	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(p.Raw)); err != nil {
		return fmt.Errorf("parse proof: %w", err)
	}
	if err := groth16.Verify(proof, n.vk, w); err != nil {
		return fmt.Errorf("proof verification failed: %w", err)
	}
	return nil
}

// setupOrLoadKeys loads Groth16 keys from keyDir, generating and saving a
// fresh pair when either file is missing.
func setupOrLoadKeys(ccs constraint.ConstraintSystem, keyDir string) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	pkPath := filepath.Join(keyDir, provingKeyFile)
	vkPath := filepath.Join(keyDir, verifyingKeyFile)

	pk, pkErr := loadProvingKey(pkPath)
	vk, vkErr := loadVerifyingKey(vkPath)
	if pkErr == nil && vkErr == nil {
		return pk, vk, nil
	}

	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, nil, fmt.Errorf("groth16 setup: %w", err)
	}
	if err := os.MkdirAll(keyDir, 0o700); err != nil {
		return nil, nil, err
	}
	if err := saveKey(pkPath, pk); err != nil {
		return nil, nil, fmt.Errorf("save proving key: %w", err)
	}
	if err := saveKey(vkPath, vk); err != nil {
		return nil, nil, fmt.Errorf("save verifying key: %w", err)
	}
	return pk, vk, nil
}

func loadProvingKey(path string) (groth16.ProvingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pk := groth16.NewProvingKey(ecc.BN254)
	_, err = pk.ReadFrom(f)
	return pk, err
}

func loadVerifyingKey(path string) (groth16.VerifyingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	vk := groth16.NewVerifyingKey(ecc.BN254)
	_, err = vk.ReadFrom(f)
	return vk, err
}

func saveKey(path string, k io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = k.WriteTo(f)
	return err
}

// Compile-time assertion that Notary implements domain.Notary.
var _ domain.Notary = (*Notary)(nil)
