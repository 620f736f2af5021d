/*
   Velociraptor - Dig Deeper
   Copyright (C) 2019-2025 Rapid7 Inc.

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU Affero General Public License as published
   by the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU Affero General Public License for more details.

   You should have received a copy of the GNU Affero General Public License
   along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
/*
   The trust layer between a master and its minions.

   It is designed for the following goals:

1. Every node has an RSA keypair in its pki directory. Keys are
   generated once and never silently replaced. Concurrent generators
   for the same name agree on a single winner without locking.

2. A session key is delivered to the peer wrapped with the peer's
   public key (RSA-OAEP). The key string is base64(aes_key ||
   hmac_key), optionally followed by the "_|-" delimiter and a token.

3. The sender signs the lower case hex SHA-256 of the unwrapped key
   material with a raw PKCS#1 signature. The receiver recovers the
   digest using the sender's public key from {pki_dir}/{sender}.pub
   and compares it in constant time. A session key is never trusted
   without this signature.

4. A handshake never fails with an error: it produces a
   HandshakeResult which is either accepted or rejected. Rejected
   results carry no key material.

5. Each message in the session is an envelope: IV || AES-CBC cipher
   text || HMAC-SHA256(IV || cipher text). The HMAC is checked before
   anything is decrypted.

*/
package crypto
