package credentials

import (
	"crypto"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	xpkcs12 "golang.org/x/crypto/pkcs12"
	pkcs12 "software.sslmate.com/src/go-pkcs12"

	"github.com/ekasa-labs/receiptd/internal/domain"
)

// Material is the parsed credential set: the server identity plus the trust
// anchors client certificates are validated against.
type Material struct {
	// Certificate is the server identity (leaf, chain and private key)
	Certificate tls.Certificate

	// ClientCAs holds the root and intermediate certificates trusted to sign
	// client certificates
	ClientCAs *x509.CertPool
}

// LoadMaterial reads and decrypts the keystore and truststore containers.
// Any malformed container, wrong passphrase, or key/leaf mismatch is reported
// as a *domain.CredentialError and must abort server startup.
func LoadMaterial(keystorePath, keystorePass, truststorePath, truststorePass string) (Material, error) {
	cert, err := loadKeystore(keystorePath, keystorePass)
	if err != nil {
		return Material{}, &domain.CredentialError{Source: "keystore", Err: err}
	}

	pool, err := loadTruststore(truststorePath, truststorePass)
	if err != nil {
		return Material{}, &domain.CredentialError{Source: "truststore", Err: err}
	}

	return Material{Certificate: cert, ClientCAs: pool}, nil
}

// loadKeystore decodes a PKCS#12 container holding the server's private key
// and certificate chain.
func loadKeystore(path, passphrase string) (tls.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, err
	}

	key, leaf, chain, err := pkcs12.DecodeChain(data, passphrase)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("decode: %w", err)
	}

	if err := verifyKeyMatch(key, leaf); err != nil {
		return tls.Certificate{}, err
	}

	cert := tls.Certificate{
		Certificate: [][]byte{leaf.Raw},
		PrivateKey:  key,
		Leaf:        leaf,
	}
	for _, ca := range chain {
		cert.Certificate = append(cert.Certificate, ca.Raw)
	}
	return cert, nil
}

// loadTruststore decodes a PKCS#12 container and collects every certificate
// it holds into a pool of trust anchors.
func loadTruststore(path, passphrase string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	blocks, err := xpkcs12.ToPEM(data, passphrase)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	pool := x509.NewCertPool()
	var count int
	for _, block := range blocks {
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse certificate: %w", err)
		}
		pool.AddCert(cert)
		count++
	}
	if count == 0 {
		return nil, errors.New("no certificates found")
	}
	return pool, nil
}

// verifyKeyMatch checks that the private key belongs to the leaf certificate.
func verifyKeyMatch(key interface{}, leaf *x509.Certificate) error {
	signer, ok := key.(crypto.Signer)
	if !ok {
		return fmt.Errorf("unsupported private key type %T", key)
	}
	pub, ok := leaf.PublicKey.(interface{ Equal(crypto.PublicKey) bool })
	if !ok {
		return fmt.Errorf("unsupported public key type %T", leaf.PublicKey)
	}
	if !pub.Equal(signer.Public()) {
		return errors.New("private key does not match leaf certificate")
	}
	return nil
}
